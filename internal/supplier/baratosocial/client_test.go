package baratosocial

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dfcarvalho/smmpanel/internal/logger"
)

func TestClient_Services(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
			require.NoError(t, r.ParseForm())
			require.Equal(t, "services", r.PostForm.Get("action"))
			require.Equal(t, "test-key", r.PostForm.Get("key"), "api key should travel in the form")

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{
					"service": "101",
					"name": "Instagram Followers",
					"type": "Default",
					"category": "Instagram",
					"description": "Real followers",
					"rate": "2.50",
					"min": "100",
					"max": "10000"
				}
			]`))
		}))
		defer srv.Close()

		c := NewClient("test-key", logger.NewNoOpLogger(), WithBaseURL(srv.URL))

		services, err := c.Services(t.Context())
		require.NoError(t, err)
		require.Len(t, services, 1)
		require.Equal(t, "101", services[0].ServiceID)
		require.Equal(t, "Instagram Followers", services[0].Name)
		require.Equal(t, "2.50", services[0].Rate)
		require.Equal(t, "100", services[0].Min)
		require.Equal(t, "10000", services[0].Max)
	})

	t.Run("vendor error payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"error": "Invalid API key"}`))
		}))
		defer srv.Close()

		c := NewClient("bad-key", logger.NewNoOpLogger(), WithBaseURL(srv.URL))

		_, err := c.Services(t.Context())
		require.Error(t, err)

		var vendorErr *Error
		require.ErrorAs(t, err, &vendorErr)
		require.Equal(t, CodeVendor, vendorErr.Code)
		require.Equal(t, "Invalid API key", vendorErr.Message)
	})

	t.Run("non-JSON response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`<html>maintenance</html>`))
		}))
		defer srv.Close()

		c := NewClient("test-key", logger.NewNoOpLogger(), WithBaseURL(srv.URL))

		_, err := c.Services(t.Context())
		require.Error(t, err)

		var vendorErr *Error
		require.ErrorAs(t, err, &vendorErr)
		require.Equal(t, CodeUnavailable, vendorErr.Code)
	})
}

func TestClient_Balance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "balance", r.PostForm.Get("action"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"balance": "84.90", "currency": "BRL"}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", logger.NewNoOpLogger(), WithBaseURL(srv.URL))

	balance, err := c.Balance(t.Context())
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.RequireFromString("84.90")), "got %s", balance)
}

func TestClient_AddOrder(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			require.Equal(t, "add", r.PostForm.Get("action"))
			require.Equal(t, "101", r.PostForm.Get("service"))
			require.Equal(t, "https://instagram.com/someone", r.PostForm.Get("link"))
			require.Equal(t, "500", r.PostForm.Get("quantity"))
			require.Equal(t, "test-key", r.PostForm.Get("key"))
			require.Empty(t, r.PostForm.Get("comments"), "empty comments should not be sent")

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"order": 987654}`))
		}))
		defer srv.Close()

		c := NewClient("test-key", logger.NewNoOpLogger(), WithBaseURL(srv.URL))

		orderID, err := c.AddOrder(t.Context(), OrderRequest{
			ServiceID: 101,
			Link:      "https://instagram.com/someone",
			Quantity:  500,
		})
		require.NoError(t, err)
		require.Equal(t, int64(987654), orderID)
	})

	t.Run("vendor refuses order", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"error": "Not enough funds"}`))
		}))
		defer srv.Close()

		c := NewClient("test-key", logger.NewNoOpLogger(), WithBaseURL(srv.URL))

		_, err := c.AddOrder(t.Context(), OrderRequest{ServiceID: 101, Link: "x", Quantity: 10})
		require.Error(t, err)

		var vendorErr *Error
		require.ErrorAs(t, err, &vendorErr)
		require.Equal(t, CodeVendor, vendorErr.Code)
		require.Equal(t, "Not enough funds", vendorErr.Message)
	})

	t.Run("missing order id", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		c := NewClient("test-key", logger.NewNoOpLogger(), WithBaseURL(srv.URL))

		_, err := c.AddOrder(t.Context(), OrderRequest{ServiceID: 101, Link: "x", Quantity: 10})
		require.Error(t, err)

		var vendorErr *Error
		require.ErrorAs(t, err, &vendorErr)
		require.Equal(t, CodeVendor, vendorErr.Code)
	})
}
