package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"bookwidget/internal/models"
)

// SubmissionError carries the server-provided rejection message so the
// summary screen can show it inline.
type SubmissionError struct {
	Message string
}

func (e *SubmissionError) Error() string {
	return e.Message
}

// ServiceBookingRequest is the POST /public/booking payload.
type ServiceBookingRequest struct {
	ClientID      string `json:"client_id"`
	LocationCode  string `json:"location_code"`
	ServiceID     int64  `json:"service_id"`
	BookingDate   string `json:"booking_date"`
	BookingTime   string `json:"booking_time"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	ItemBrand     string `json:"item_brand,omitempty"`
	ItemModel     string `json:"item_model,omitempty"`
	Description   string `json:"description,omitempty"`
}

// RentalBookingRequest is the POST /public/rental/booking payload.
type RentalBookingRequest struct {
	ClientID      string `json:"client_id"`
	BikeID        int64  `json:"bike_id"`
	LocationCode  string `json:"location_code"`
	SelectedSize  string `json:"selected_size"`
	PickupDate    string `json:"pickup_date"`
	ReturnDate    string `json:"return_date"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

// BuildServiceBooking assembles the service-flow payload from a completed
// selection.
func BuildServiceBooking(clientID string, sel *models.Selection) ServiceBookingRequest {
	req := ServiceBookingRequest{
		ClientID:      clientID,
		BookingDate:   sel.Date,
		BookingTime:   sel.Time,
		CustomerName:  sel.Customer.Name,
		CustomerEmail: sel.Customer.Email,
		CustomerPhone: sel.Customer.Phone,
		ItemBrand:     sel.ItemBrand,
		ItemModel:     sel.ItemModel,
		Description:   sel.Description,
	}
	if sel.Location != nil {
		req.LocationCode = sel.Location.Code
	}
	if sel.Service != nil {
		req.ServiceID = sel.Service.ID
	}
	return req
}

// BuildRentalBooking assembles the rental-flow payload from a completed
// selection.
func BuildRentalBooking(clientID string, sel *models.Selection) RentalBookingRequest {
	req := RentalBookingRequest{
		ClientID:      clientID,
		SelectedSize:  sel.Size,
		PickupDate:    sel.PickupDate,
		ReturnDate:    sel.ReturnDate,
		CustomerName:  sel.Customer.Name,
		CustomerEmail: sel.Customer.Email,
		CustomerPhone: sel.Customer.Phone,
	}
	if sel.Item != nil {
		req.BikeID = sel.Item.ID
	}
	if sel.Location != nil {
		req.LocationCode = sel.Location.Code
	}
	return req
}

// SubmitServiceBooking posts a service appointment and returns the booking
// number on success.
func (c *Client) SubmitServiceBooking(ctx context.Context, req ServiceBookingRequest) (models.BookingResult, error) {
	return c.submit(ctx, c.baseURL+"/public/booking", req)
}

// SubmitRentalBooking posts a rental reservation and returns the booking
// number on success.
func (c *Client) SubmitRentalBooking(ctx context.Context, req RentalBookingRequest) (models.BookingResult, error) {
	return c.submit(ctx, c.baseURL+"/public/rental/booking", req)
}

func (c *Client) submit(ctx context.Context, endpoint string, payload any) (models.BookingResult, error) {
	var result models.BookingResult

	data, err := json.Marshal(payload)
	if err != nil {
		return result, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(data)))
	if err != nil {
		return result, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return result, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, err
	}

	var reply struct {
		BookingNumber string `json:"booking_number"`
		Error         string `json:"error"`
	}
	// body may be non-JSON on proxy errors; the status check below covers it
	_ = json.Unmarshal(body, &reply)

	if resp.StatusCode >= 300 || reply.Error != "" {
		msg := reply.Error
		if msg == "" {
			msg = fmt.Sprintf("booking failed (http %d)", resp.StatusCode)
		}
		return result, &SubmissionError{Message: msg}
	}
	if reply.BookingNumber == "" {
		return result, &SubmissionError{Message: "booking failed: empty booking number"}
	}

	result.BookingNumber = reply.BookingNumber
	return result, nil
}
