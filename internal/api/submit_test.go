package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookwidget/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitServiceBooking(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var got ServiceBookingRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/public/booking", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"booking_number":"SB-2025-0042"}`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "client-1")
		result, err := c.SubmitServiceBooking(context.Background(), ServiceBookingRequest{
			ClientID:     "client-1",
			LocationCode: "BA",
			ServiceID:    5,
			BookingDate:  "2025-07-10",
			BookingTime:  "10:00",
			CustomerName: "Ján Novák",
		})
		require.NoError(t, err)
		assert.Equal(t, "SB-2025-0042", result.BookingNumber)
		assert.Equal(t, "BA", got.LocationCode)
		assert.Equal(t, int64(5), got.ServiceID)
	})

	t.Run("ServerRejection", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"slot no longer available"}`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "client-1")
		_, err := c.SubmitServiceBooking(context.Background(), ServiceBookingRequest{})
		var subErr *SubmissionError
		require.ErrorAs(t, err, &subErr)
		assert.Equal(t, "slot no longer available", subErr.Message)
	})

	t.Run("NonJSONFailure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad gateway", http.StatusBadGateway)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "client-1")
		_, err := c.SubmitServiceBooking(context.Background(), ServiceBookingRequest{})
		var subErr *SubmissionError
		require.ErrorAs(t, err, &subErr)
		assert.Contains(t, subErr.Message, "502")
	})
}

func TestSubmitRentalBooking(t *testing.T) {
	var got RentalBookingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/public/rental/booking", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"booking_number":"RB-77"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "client-1")
	result, err := c.SubmitRentalBooking(context.Background(), RentalBookingRequest{
		ClientID:     "client-1",
		BikeID:       3,
		SelectedSize: "M",
		PickupDate:   "2025-07-10",
		ReturnDate:   "2025-07-12",
	})
	require.NoError(t, err)
	assert.Equal(t, "RB-77", result.BookingNumber)
	assert.Equal(t, "M", got.SelectedSize)
}

func TestBuildServiceBooking(t *testing.T) {
	sel := &models.Selection{
		Mode:     models.ModeService,
		Location: &models.Location{ID: 1, Code: "BA", Name: "Bratislava"},
		Service:  &models.Service{ID: 5, Price: 29},
		Date:     "2025-07-10",
		Time:     "10:00",
		Customer: models.Customer{Name: "Ján Novák", Email: "jan@test.sk", Phone: "+421900000000"},
	}

	req := BuildServiceBooking("client-1", sel)
	assert.Equal(t, "client-1", req.ClientID)
	assert.Equal(t, "BA", req.LocationCode)
	assert.Equal(t, int64(5), req.ServiceID)
	assert.Equal(t, "2025-07-10", req.BookingDate)
	assert.Equal(t, "10:00", req.BookingTime)
	assert.Equal(t, "jan@test.sk", req.CustomerEmail)
}

func TestBuildRentalBooking(t *testing.T) {
	sel := &models.Selection{
		Mode:       models.ModeRental,
		Item:       &models.RentalItem{ID: 3, Sizes: []string{"S", "M"}},
		Size:       "M",
		Location:   &models.Location{Code: "KE"},
		PickupDate: "2025-07-10",
		ReturnDate: "2025-07-12",
		Customer:   models.Customer{Name: "Eva", Email: "eva@test.sk", Phone: "+421"},
	}

	req := BuildRentalBooking("client-1", sel)
	assert.Equal(t, int64(3), req.BikeID)
	assert.Equal(t, "KE", req.LocationCode)
	assert.Equal(t, "M", req.SelectedSize)
	assert.Equal(t, "2025-07-10", req.PickupDate)
	assert.Equal(t, "2025-07-12", req.ReturnDate)
}
