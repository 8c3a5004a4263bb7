package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/viper"

	"expensetracker/internal/client"
	"expensetracker/internal/expensecache"
	"expensetracker/internal/logger"
)

var errNotLoggedIn = errors.New("not logged in: run 'expenses login' or 'expenses register' first")

// newClient builds an API client from the loaded configuration.
func newClient() *client.Client {
	httpClient := &http.Client{Timeout: viper.GetDuration("timeout")}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	c := client.New(viper.GetString("api_url"), httpClient)
	if token := viper.GetString("token"); token != "" {
		c = c.WithToken(token)
	}
	return c
}

// openCache returns a loaded cache for the logged-in user. A failed initial
// fetch is reported as an error since every command needs the collection.
func openCache(ctx context.Context) (*expensecache.Cache, error) {
	if viper.GetString("token") == "" {
		return nil, errNotLoggedIn
	}

	cache := expensecache.New(newClient(), logger.Get())
	if err := cache.Load(ctx); err != nil {
		return nil, explain(err)
	}
	return cache, nil
}

// explain turns an auth failure into a hint; other errors pass through.
func explain(err error) error {
	if client.IsStatus(err, http.StatusUnauthorized) {
		return fmt.Errorf("%w (session expired? run 'expenses login')", err)
	}
	return err
}
