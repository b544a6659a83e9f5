package calendar

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/groomcrm/groomcrm/pkg/types"
)

const googleCalendarBaseURL = "https://www.googleapis.com/calendar/v3"

// Client talks to the Google Calendar v3 API. Requests carry the cached
// bearer token and are never retried; transient failures surface to the
// caller with status and body intact.
type Client struct {
	http   *resty.Client
	tokens *TokenCache
	logger *zap.Logger
}

func NewClient(tokens *TokenCache, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(googleCalendarBaseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Accept", "application/json")

	return &Client{
		http:   httpClient,
		tokens: tokens,
		logger: logger,
	}
}

// SetBaseURL overrides the API endpoint, for proxies and tests.
func (c *Client) SetBaseURL(u string) {
	c.http.SetBaseURL(u)
}

type calendarListResponse struct {
	Items []*types.Calendar `json:"items"`
}

type eventsResponse struct {
	Items         []*types.CalendarEvent `json:"items"`
	NextPageToken string                 `json:"nextPageToken,omitempty"`
}

func (c *Client) request() (*resty.Request, error) {
	token, err := c.tokens.AccessToken()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	return c.http.R().SetAuthToken(token), nil
}

func (c *Client) checkResponse(resp *resty.Response, what string) error {
	if resp.StatusCode() == http.StatusUnauthorized {
		c.tokens.Clear()
		return ErrNotAuthenticated
	}
	if resp.IsError() {
		return fmt.Errorf("failed to %s: %d %s", what, resp.StatusCode(), resp.String())
	}
	return nil
}

// ListCalendars returns every calendar visible to the authenticated user.
func (c *Client) ListCalendars() ([]*types.Calendar, error) {
	req, err := c.request()
	if err != nil {
		return nil, err
	}

	var result calendarListResponse
	resp, err := req.SetResult(&result).Get("/users/me/calendarList")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendars: %w", err)
	}
	if err := c.checkResponse(resp, "fetch calendars"); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// ListEvents returns single event instances in [timeMin, timeMax), ordered
// by start time.
func (c *Client) ListEvents(calendarID string, timeMin, timeMax time.Time) ([]*types.CalendarEvent, error) {
	req, err := c.request()
	if err != nil {
		return nil, err
	}

	var result eventsResponse
	resp, err := req.
		SetPathParam("calendarId", calendarID).
		SetQueryParams(map[string]string{
			"singleEvents": "true",
			"orderBy":      "startTime",
			"timeMin":      timeMin.Format(time.RFC3339),
			"timeMax":      timeMax.Format(time.RFC3339),
		}).
		SetResult(&result).
		Get("/calendars/{calendarId}/events")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	if err := c.checkResponse(resp, "fetch events"); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// GetEvent fetches a single event by id.
func (c *Client) GetEvent(calendarID, eventID string) (*types.CalendarEvent, error) {
	req, err := c.request()
	if err != nil {
		return nil, err
	}

	var event types.CalendarEvent
	resp, err := req.
		SetPathParam("calendarId", calendarID).
		SetPathParam("eventId", eventID).
		SetResult(&event).
		Get("/calendars/{calendarId}/events/{eventId}")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}
	if err := c.checkResponse(resp, "fetch event"); err != nil {
		return nil, err
	}
	return &event, nil
}

// PatchEventDescription replaces the event's description and returns the
// updated event.
func (c *Client) PatchEventDescription(calendarID, eventID, description string) (*types.CalendarEvent, error) {
	req, err := c.request()
	if err != nil {
		return nil, err
	}

	var event types.CalendarEvent
	resp, err := req.
		SetPathParam("calendarId", calendarID).
		SetPathParam("eventId", eventID).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"description": description}).
		SetResult(&event).
		Patch("/calendars/{calendarId}/events/{eventId}")
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	if err := c.checkResponse(resp, "update event"); err != nil {
		return nil, err
	}

	c.logger.Debug("patched event description",
		zap.String("calendar_id", calendarID),
		zap.String("event_id", eventID))
	return &event, nil
}
