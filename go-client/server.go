package goredis

import (
	"context"
)

// Auth authenticates the client with the Redis server using the provided username and password.
// It returns the server's response or an error if authentication fails.
func (c *GoRedisClient) Auth(ctx context.Context, username string, password ...string) (interface{}, error) {
	if len(password) > 0 {
		return c.SendCommand(ctx, "AUTH", username, password[0])
	}
	return c.SendCommand(ctx, "AUTH", username)
}

// Ping sends a PING command to the Redis server.
// If a message is provided, it is included in the PING command.
func (c *GoRedisClient) Ping(ctx context.Context, message ...string) (interface{}, error) {
	cmdArgs := []interface{}{"PING"}
	if len(message) > 0 {
		cmdArgs = append(cmdArgs, message[0])
	}
	return c.SendCommand(ctx, cmdArgs...)
}

// Select changes the selected database for the current connection to the specified index.
func (c *GoRedisClient) Select(ctx context.Context, index int) (interface{}, error) {
	return c.SendCommand(ctx, "SELECT", index)
}

// Info retrieves information and statistics about the Redis server.
func (c *GoRedisClient) Info(ctx context.Context, section ...string) (interface{}, error) {
	cmdArgs := []interface{}{"INFO"}
	if len(section) > 0 {
		cmdArgs = append(cmdArgs, section[0])
	}
	return c.SendCommand(ctx, cmdArgs...)
}

// DbSize returns the number of keys in the currently selected database.
func (c *GoRedisClient) DbSize(ctx context.Context) (interface{}, error) {
	return c.SendCommand(ctx, "DBSIZE")
}

// FlushDb removes all keys from the currently selected database.
func (c *GoRedisClient) FlushDb(ctx context.Context) (interface{}, error) {
	return c.SendCommand(ctx, "FLUSHDB")
}
