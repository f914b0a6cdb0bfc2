package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-clinic/aura/internal/models"
	"github.com/aura-clinic/aura/internal/models/dto"
	"github.com/aura-clinic/aura/internal/server/servertest"
)

func backend(t *testing.T) *httptest.Server {
	t.Helper()
	return servertest.New(t, nil)
}

// unreachable returns an address nothing listens on.
func unreachable(t *testing.T) string {
	t.Helper()
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()
	return url
}

func TestLoginStoresAccessToken(t *testing.T) {
	ts := backend(t)
	c := New(ts.URL, nil)

	auth, err := c.Login(context.Background(), "dr.kelven@aura.app", "aura123")
	require.NoError(t, err)
	assert.Equal(t, "bearer", auth.TokenType)
	assert.Equal(t, auth.AccessToken, c.AuthToken())

	user, err := c.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Dr. Kelven", user.Name)
}

func TestLoginFailureLeavesTokenUnset(t *testing.T) {
	ts := backend(t)
	c := New(ts.URL, nil)

	_, err := c.Login(context.Background(), "dr.kelven@aura.app", "wrong")
	require.Error(t, err)
	assert.Empty(t, c.AuthToken())
	assert.Equal(t, KindUnauthenticated, Classify(err))
	assert.Equal(t, MessageRejected, UserMessage(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.NotEmpty(t, apiErr.Detail)
}

func TestAuthorizationHeaderFollowsToken(t *testing.T) {
	var seen []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, "[]")
	}))
	defer ts.Close()

	c := New(ts.URL, nil)
	ctx := context.Background()

	_, err := c.GetAgenda(ctx)
	require.NoError(t, err)
	c.SetAuthToken("abc")
	_, err = c.GetAgenda(ctx)
	require.NoError(t, err)
	c.ClearAuthToken()
	_, err = c.GetAgenda(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"", "Bearer abc", ""}, seen)
}

func TestUnauthorizedNotifiesOnlyWithToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"Token inválido ou expirado"}`)
	}))
	defer ts.Close()

	c := New(ts.URL, nil)
	var calls atomic.Int32
	var sent atomic.Value
	unsubscribe := c.OnUnauthenticated(func(token string) {
		calls.Add(1)
		sent.Store(token)
	})

	_, err := c.GetAgenda(context.Background())
	require.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, int32(0), calls.Load())

	c.SetAuthToken("stale")
	_, err = c.GetAgenda(context.Background())
	require.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "stale", sent.Load())

	unsubscribe()
	_, err = c.GetAgenda(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHealthCheck(t *testing.T) {
	t.Run("online", func(t *testing.T) {
		ts := backend(t)
		health := New(ts.URL, nil).HealthCheck(context.Background())
		assert.Equal(t, dto.StatusOnline, health.Status)
		assert.Equal(t, "AURA", health.System)
		assert.True(t, health.Online())
	})

	t.Run("unreachable", func(t *testing.T) {
		health := New(unreachable(t), nil).HealthCheck(context.Background())
		assert.Equal(t, dto.HealthStatus{Status: dto.StatusOffline}, health)
		assert.False(t, health.Online())
	})

	t.Run("server error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer ts.Close()
		assert.False(t, New(ts.URL, nil).HealthCheck(context.Background()).Online())
	})

	t.Run("arbitrary body", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "pong")
		}))
		defer ts.Close()
		assert.True(t, New(ts.URL, nil).HealthCheck(context.Background()).Online())
	})
}

func TestTimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	c := New(ts.URL, nil, WithTimeout(50*time.Millisecond))
	_, err := c.GetAgenda(context.Background())
	require.Error(t, err)

	var transport *TransportError
	require.ErrorAs(t, err, &transport)
	assert.True(t, transport.Timeout())
	assert.Equal(t, KindTransport, Classify(err))
	assert.Equal(t, MessageNoConnection, UserMessage(err))
}

func TestClinicRoundTrip(t *testing.T) {
	ts := backend(t)
	c := New(ts.URL+"/", nil)
	ctx := context.Background()
	_, err := c.Login(ctx, "dr.kelven@aura.app", "aura123")
	require.NoError(t, err)

	patient, err := c.CreatePatient(ctx, dto.CreatePatientRequest{Name: "Maria Souza", Phone: "11999990000"})
	require.NoError(t, err)
	got, err := c.GetPatient(ctx, patient.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", got.Name)

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	appt, err := c.CreateAppointment(ctx, dto.CreateAppointmentRequest{
		PatientID: patient.ID,
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Type:      "consulta",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, appt.Status)

	agenda, err := c.GetAgenda(ctx)
	require.NoError(t, err)
	require.Len(t, agenda, 1)
	assert.Equal(t, "Maria Souza", agenda[0].Patient.Name)

	_, err = c.CreateTransaction(ctx, dto.CreateTransactionRequest{Description: "Consulta", Value: 250, Kind: models.KindIncome, Category: "consultas", Paid: true})
	require.NoError(t, err)
	txs, err := c.GetFinance(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.InDelta(t, 250, txs[0].Value, 0.001)
}

func TestPasswordRecoveryFlow(t *testing.T) {
	ts := backend(t)
	c := New(ts.URL, nil)
	ctx := context.Background()

	forgot, err := c.ForgotPassword(ctx, "dr.kelven@aura.app")
	require.NoError(t, err)
	require.Len(t, forgot.Token, 6)

	_, err = c.ResetPassword(ctx, dto.ResetPasswordRequest{Email: "dr.kelven@aura.app", Token: forgot.Token, NewPassword: "nova-senha"})
	require.NoError(t, err)

	_, err = c.Login(ctx, "dr.kelven@aura.app", "nova-senha")
	require.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	ts := backend(t)
	c := New(ts.URL, nil)
	ctx := context.Background()

	_, err := c.ChangePassword(ctx, dto.ChangePasswordRequest{CurrentPassword: "aura123", NewPassword: "nova-senha"})
	require.ErrorIs(t, err, ErrUnauthenticated)

	_, err = c.Login(ctx, "dr.kelven@aura.app", "aura123")
	require.NoError(t, err)

	_, err = c.ChangePassword(ctx, dto.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "nova-senha"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	resp, err := c.ChangePassword(ctx, dto.ChangePasswordRequest{CurrentPassword: "aura123", NewPassword: "nova-senha"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Message)

	c.ClearAuthToken()
	_, err = c.Login(ctx, "dr.kelven@aura.app", "nova-senha")
	require.NoError(t, err)
}

func TestValidationDetailList(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"detail":[{"loc":["body","email"],"msg":"field required"},{"msg":"too short"}]}`)
	}))
	defer ts.Close()

	_, err := New(ts.URL, nil).Register(context.Background(), dto.RegisterRequest{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "field required; too short", apiErr.Detail)
	assert.Equal(t, KindRejected, Classify(err))
}

func TestSetBaseURL(t *testing.T) {
	c := New(" http://localhost:8000/ ", nil)
	assert.Equal(t, "http://localhost:8000", c.BaseURL())
	c.SetBaseURL("http://10.0.2.2:8000")
	assert.Equal(t, "http://10.0.2.2:8000", c.BaseURL())
}
