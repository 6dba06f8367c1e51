package goredis

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/akashmaji946/go-redis-batch/internal/pipeline"
)

// Typed objects are stored as JSON under "urn:<type>:<id>" and their ids are
// kept in the set "ids:<Type>", both behind the client's NamespacePrefix.

func typeName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// UrnKey returns the key an object of type typ with the given id is stored at.
func (c *GoRedisClient) UrnKey(typ, id string) string {
	return c.NamespacePrefix + "urn:" + strings.ToLower(typ) + ":" + id
}

// IdsKey returns the set holding every stored id of type typ.
func (c *GoRedisClient) IdsKey(typ string) string {
	return c.NamespacePrefix + "ids:" + typ
}

// StoreObject queues a SET of obj as JSON and registers id in the type's id
// set. Inside a batch the registration is applied only if the batch
// completes.
func StoreObject[T any](c *GoRedisClient, q Queuer, id string, obj T, dec pipeline.Decoder) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("store %s %s: %w", typeName[T](), id, err)
	}
	typ := typeName[T]()
	if err := enqueue(q, dec, "SET", c.UrnKey(typ, id), data); err != nil {
		return err
	}
	return c.conn.Ledger().Register(c.IdsKey(typ), id)
}

// DeleteObject queues a DEL of the object and drops id from the type's id set.
func DeleteObject[T any](c *GoRedisClient, q Queuer, id string, dec pipeline.Decoder) error {
	typ := typeName[T]()
	if err := enqueue(q, dec, "DEL", c.UrnKey(typ, id)); err != nil {
		return err
	}
	return c.conn.Ledger().Unregister(c.IdsKey(typ), id)
}

// GetObject queues a GET of the object stored under id. Pair it with
// pipeline.Object[T].
func GetObject[T any](c *GoRedisClient, q Queuer, id string, dec pipeline.Decoder) error {
	return enqueue(q, dec, "GET", c.UrnKey(typeName[T](), id))
}

// GetObjects queues an MGET of the objects stored under ids. Pair it with
// pipeline.Objects[T].
func GetObjects[T any](c *GoRedisClient, q Queuer, dec pipeline.Decoder, ids ...string) error {
	typ := typeName[T]()
	keys := make([]interface{}, len(ids))
	for i, id := range ids {
		keys[i] = c.UrnKey(typ, id)
	}
	return enqueue(q, dec, "MGET", keys...)
}
