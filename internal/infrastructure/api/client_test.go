package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradebridge/rfq-marketplace/internal/core/domain"
	"github.com/tradebridge/rfq-marketplace/internal/core/ports"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, zerolog.Nop())
}

func TestBaseURLNormalization(t *testing.T) {
	c := NewClient("localhost:8080/", zerolog.Nop())
	assert.Equal(t, "http://localhost:8080", c.baseURL)

	c = NewClient("https://api.example.com", zerolog.Nop())
	assert.Equal(t, "https://api.example.com", c.baseURL)
}

func TestBearerHeader(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(domain.RFQ{ID: "rfq-1"}) //nolint:errcheck
	})

	_, err := c.GetRFQ(context.Background(), "rfq-1")
	require.NoError(t, err)
	assert.Empty(t, gotAuth, "anonymous call must not send a token")

	c.SetToken("tok-1")
	_, err = c.GetRFQ(context.Background(), "rfq-1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)

	c.ClearToken()
	_, err = c.GetRFQ(context.Background(), "rfq-1")
	require.NoError(t, err)
	assert.Empty(t, gotAuth, "cleared token must not be sent")
}

func TestLoginMapsCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a@b.com", req.Email)

		json.NewEncoder(w).Encode(loginResponse{ //nolint:errcheck
			AccessToken: "tok-1",
			FirstName:   "Samuel",
			LastName:    "Tesfaye",
			ID:          "user-7",
			LastRole:    "seller",
		})
	})

	creds, err := c.Login(context.Background(), "a@b.com", "Abcdefgh12!@")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", creds.AccessToken)
	assert.Equal(t, "user-7", creds.UserID)
	assert.Equal(t, domain.RoleSeller, creds.Role)
	assert.Equal(t, "Samuel Tesfaye", creds.DisplayName())
}

func TestLoginDefaultsUnknownRole(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(loginResponse{ //nolint:errcheck
			AccessToken: "tok-1",
			FirstName:   "Samuel",
			ID:          "user-7",
			LastRole:    "admin",
		})
	})

	creds, err := c.Login(context.Background(), "a@b.com", "Abcdefgh12!@")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleBuyer, creds.Role)
}

func TestErrorEnvelopeNormalization(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		wantCode string
	}{
		{"message envelope", http.StatusConflict, `{"message":"bid already awarded","code":"CONFLICT"}`, "bid already awarded", "CONFLICT"},
		{"error envelope", http.StatusForbidden, `{"error":"not your rfq"}`, "not your rfq", ""},
		{"non-json body", http.StatusBadGateway, `upstream exploded`, "Bad Gateway", ""},
		{"empty body", http.StatusNotFound, ``, "Not Found", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body) //nolint:errcheck
			})

			_, err := c.GetBid(context.Background(), "bid-1")
			require.Error(t, err)

			var apiErr *domain.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.wantMsg, apiErr.Message)
			assert.Equal(t, tc.wantCode, apiErr.Code)
		})
	}
}

func TestTransportErrorBecomesAPIError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", zerolog.Nop()) // nothing listens here

	_, err := c.GetBid(context.Background(), "bid-1")
	require.Error(t, err)

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.Status)
	assert.NotEmpty(t, apiErr.Message)
}

func TestCreateBidMultipart(t *testing.T) {
	payload := ports.BidPayload{
		RFQID: "rfq-1",
		Items: []domain.LineItem{
			{Name: "cement", Quantity: 2, Unit: domain.UnitPieces, UnitPrice: 40, TransportFee: 10, Taxes: 10, Total: 100},
		},
		GrandTotal: 100,
		Notes:      "delivery included",
	}
	files := []ports.Upload{{
		Field:       "bidFiles",
		FileName:    "offer.zip",
		ContentType: "application/zip",
		Content:     []byte("PK\x03\x04fake"),
	}}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/bid/seller/seller-1/create-bid", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(32<<20))

		var got ports.BidPayload
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("data")), &got))
		assert.Equal(t, payload.GrandTotal, got.GrandTotal)
		require.Len(t, got.Items, 1)
		assert.Equal(t, "cement", got.Items[0].Name)

		fh := r.MultipartForm.File["bidFiles"]
		require.Len(t, fh, 1)
		assert.Equal(t, "offer.zip", fh[0].Filename)
		f, err := fh[0].Open()
		require.NoError(t, err)
		defer f.Close()
		content, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, files[0].Content, content)

		json.NewEncoder(w).Encode(domain.Bid{ID: "bid-1", RFQID: got.RFQID, GrandTotal: got.GrandTotal}) //nolint:errcheck
	})

	bid, err := c.CreateBid(context.Background(), "seller-1", payload, files)
	require.NoError(t, err)
	assert.Equal(t, "bid-1", bid.ID)
	assert.Equal(t, float64(100), bid.GrandTotal)
}

func TestDownloadBidFile(t *testing.T) {
	content := []byte{0x50, 0x4b, 0x03, 0x04, 0xff, 0x00}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bid/bid-1/file/offer.zip", r.URL.Path)
		w.Header().Set("Content-Type", "application/zip")
		w.Write(content) //nolint:errcheck
	})

	got, err := c.DownloadBidFile(context.Background(), "bid-1", "offer.zip")
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestInitiatePayment(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transaction/tx-1/pay", r.URL.Path)
		io.WriteString(w, `{"checkoutUrl":"https://pay.example/checkout/tx-1"}`) //nolint:errcheck
	})

	url, err := c.InitiatePayment(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/checkout/tx-1", url)
}
