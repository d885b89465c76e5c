package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arnavshah/trip-roster-api/pkg/models"
	"github.com/arnavshah/trip-roster-api/pkg/store"
	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// DefaultBaseURL is the public REST endpoint
const DefaultBaseURL = "https://api.airtable.com/v0"

// Config holds the credentials and table names of the signup base
type Config struct {
	APIKey       string
	BaseID       string
	TripsTable   string
	SignupsTable string
	BaseURL      string
	// MaxRetries bounds attempts per call on 429 and 5xx responses
	MaxRetries int
}

// Client is a store.Store backed by the REST API
type Client struct {
	cfg        Config
	http       *http.Client
	logger     *zap.Logger
	newBackOff func() backoff.BackOff
}

var _ store.Store = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithBackOff replaces the exponential retry policy
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(c *Client) { c.newBackOff = newBackOff }
}

// New creates a client for the configured base
func New(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: zap.NewNop(),
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type record struct {
	ID     string          `json:"id"`
	Fields json.RawMessage `json:"fields"`
}

type listResponse struct {
	Records []record `json:"records"`
	Offset  string   `json:"offset"`
}

type tripFields struct {
	Name              string    `json:"Trip Name"`
	LeadName          string    `json:"Trip Lead Name"`
	StartDate         string    `json:"Start Date"`
	EndDate           string    `json:"End Date"`
	Status            string    `json:"Trip Status"`
	Capacity          float64   `json:"Capacity (Including leads)"`
	AdditionalDrivers float64   `json:"Additional Drivers Required"`
	Cost              []float64 `json:"Cost of Trip (per-person)"`
	Types             []string  `json:"Type of Trip"`
	NonDriverCapacity float64   `json:"Non-Drivers Capacity"`
	Full              string    `json:"FULL"`
}

// Signup table columns
const (
	fieldName    = "Slack Name Refined"
	fieldTripIDs = "Trip LeadName"
	fieldHasCar  = "Do you have a car? (from Slack Name)"
	fieldPhones  = "Emergency Contact Phone Number (from Participant Info)"
	fieldEmail   = "Personal Email"
	fieldStatus  = "Status"
)

// ListTrips fetches every trip, following the offset cursor
func (c *Client) ListTrips(ctx context.Context) ([]models.Trip, error) {
	var trips []models.Trip
	err := c.paginate(ctx, "fetch trips", c.cfg.TripsTable, func(r record) error {
		t, err := decodeTrip(r)
		if err != nil {
			return err
		}
		trips = append(trips, t)
		return nil
	})
	return trips, err
}

// GetTrip fetches a single trip by record id
func (c *Client) GetTrip(ctx context.Context, id string) (models.Trip, error) {
	var r record
	if err := c.do(ctx, "fetch trip", http.MethodGet, c.recordURL(c.cfg.TripsTable, id), nil, &r); err != nil {
		return models.Trip{}, err
	}
	t, err := decodeTrip(r)
	if err != nil {
		return models.Trip{}, &store.UpstreamError{Op: "fetch trip", Err: err}
	}
	return t, nil
}

// ListSignupsForTrip pages through the whole signups table and keeps the
// records linked to the trip
func (c *Client) ListSignupsForTrip(ctx context.Context, tripID string) ([]models.Signup, error) {
	var signups []models.Signup
	total := 0
	err := c.paginate(ctx, "fetch signups", c.cfg.SignupsTable, func(r record) error {
		total++
		s, skipped, err := decodeSignup(r)
		if err != nil {
			c.logger.Warn("skipping unreadable signup", zap.String("signup_id", r.ID), zap.Error(err))
			return nil
		}
		if len(skipped) > 0 {
			c.logger.Warn("signup fields left at defaults",
				zap.String("signup_id", r.ID), zap.Strings("fields", skipped))
		}
		if s.HasTrip(tripID) {
			signups = append(signups, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug("fetched signups",
		zap.String("trip_id", tripID),
		zap.Int("scanned", total),
		zap.Int("matched", len(signups)))
	return signups, nil
}

// UpdateSignupStatus writes the status column of one signup
func (c *Client) UpdateSignupStatus(ctx context.Context, id, status string) (models.Signup, error) {
	body, err := json.Marshal(map[string]any{
		"fields": map[string]string{"Status": status},
	})
	if err != nil {
		return models.Signup{}, err
	}

	var r record
	if err := c.do(ctx, "update signup", http.MethodPatch, c.recordURL(c.cfg.SignupsTable, id), body, &r); err != nil {
		return models.Signup{}, err
	}
	c.logger.Info("updated signup status", zap.String("signup_id", id), zap.String("status", status))

	s, skipped, err := decodeSignup(r)
	if err != nil {
		return models.Signup{}, &store.UpstreamError{Op: "update signup", Err: err}
	}
	if len(skipped) > 0 {
		c.logger.Warn("signup fields left at defaults", zap.String("signup_id", id), zap.Strings("fields", skipped))
	}
	return s, nil
}

func (c *Client) paginate(ctx context.Context, op, table string, fn func(record) error) error {
	offset := ""
	for {
		u := c.tableURL(table)
		if offset != "" {
			u += "?" + url.Values{"offset": {offset}}.Encode()
		}

		var page listResponse
		if err := c.do(ctx, op, http.MethodGet, u, nil, &page); err != nil {
			return err
		}
		for _, r := range page.Records {
			if err := fn(r); err != nil {
				return &store.UpstreamError{Op: op, Err: err}
			}
		}
		if page.Offset == "" {
			return nil
		}
		offset = page.Offset
	}
}

// do runs one request, retrying 429, 5xx and transport errors
func (c *Client) do(ctx context.Context, op, method, target string, body []byte, out any) error {
	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			c.logger.Warn("store request failed", zap.String("op", op), zap.Int("attempt", attempt), zap.Error(err))
			return struct{}{}, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return struct{}{}, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			uerr := &store.UpstreamError{Op: op, StatusCode: resp.StatusCode, Message: string(data)}
			if resp.StatusCode == http.StatusNotFound {
				uerr.Err = store.ErrNotFound
			}
			if retryable(resp.StatusCode) {
				c.logger.Warn("store request rejected",
					zap.String("op", op),
					zap.Int("status", resp.StatusCode),
					zap.Int("attempt", attempt))
				return struct{}{}, uerr
			}
			return struct{}{}, backoff.Permanent(uerr)
		}

		if out != nil {
			if err := json.Unmarshal(data, out); err != nil {
				return struct{}{}, backoff.Permanent(fmt.Errorf("decode response: %w", err))
			}
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(c.newBackOff()), backoff.WithMaxTries(uint(c.cfg.MaxRetries)))

	if err == nil {
		return nil
	}
	var uerr *store.UpstreamError
	if errors.As(err, &uerr) {
		return uerr
	}
	return &store.UpstreamError{Op: op, Err: err}
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func (c *Client) tableURL(table string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + url.PathEscape(c.cfg.BaseID) + "/" + url.PathEscape(table)
}

func (c *Client) recordURL(table, id string) string {
	return c.tableURL(table) + "/" + url.PathEscape(id)
}

func decodeTrip(r record) (models.Trip, error) {
	var f tripFields
	if len(r.Fields) > 0 {
		if err := json.Unmarshal(r.Fields, &f); err != nil {
			return models.Trip{}, fmt.Errorf("decode trip %s: %w", r.ID, err)
		}
	}
	return models.Trip{
		ID:                r.ID,
		Name:              f.Name,
		LeadName:          f.LeadName,
		StartDate:         f.StartDate,
		EndDate:           f.EndDate,
		Status:            models.TripStatus(f.Status),
		Capacity:          int(f.Capacity),
		DriverSeats:       int(f.AdditionalDrivers),
		NonDriverCapacity: int(f.NonDriverCapacity),
		Cost:              f.Cost,
		TripTypes:         f.Types,
		Full:              f.Full,
	}, nil
}

// decodeSignup maps a record onto a Signup. A column holding an unexpected
// type keeps its default and is named in skipped; only fields that are not a
// JSON object fail.
func decodeSignup(r record) (s models.Signup, skipped []string, err error) {
	var raw map[string]json.RawMessage
	if len(r.Fields) > 0 {
		if err := json.Unmarshal(r.Fields, &raw); err != nil {
			return models.Signup{}, nil, fmt.Errorf("decode signup %s: %w", r.ID, err)
		}
	}

	var (
		hasCar []bool
		phones []string
	)
	s.ID = r.ID
	decodeField(raw, fieldName, &s.Name, &skipped)
	decodeField(raw, fieldTripIDs, &s.TripIDs, &skipped)
	decodeField(raw, fieldHasCar, &hasCar, &skipped)
	decodeField(raw, fieldPhones, &phones, &skipped)
	decodeField(raw, fieldEmail, &s.Email, &skipped)
	decodeField(raw, fieldStatus, &s.Status, &skipped)

	if s.Name == "" {
		s.Name = "Unknown"
	}
	if s.TripIDs == nil {
		s.TripIDs = []string{}
	}
	if s.Status == "" {
		s.Status = "UNKNOWN"
	}
	for _, car := range hasCar {
		if car {
			s.IsDriver = true
			break
		}
	}
	for _, p := range phones {
		if strings.TrimSpace(p) != "" {
			s.Phone = p
			break
		}
	}
	return s, skipped, nil
}

// decodeField unmarshals one column into dst, leaving dst untouched and
// recording the column in skipped when the value has the wrong type
func decodeField[T any](raw map[string]json.RawMessage, name string, dst *T, skipped *[]string) {
	v, ok := raw[name]
	if !ok {
		return
	}
	var x T
	if err := json.Unmarshal(v, &x); err != nil {
		*skipped = append(*skipped, name)
		return
	}
	*dst = x
}
