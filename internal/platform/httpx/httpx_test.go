package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func problem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetail {
	t.Helper()
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var p ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestRespondErrorMapsKinds(t *testing.T) {
	cases := []struct {
		kind   error
		status int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrDuplicate, http.StatusConflict},
		{ErrValidation, http.StatusBadRequest},
		{ErrUnavailable, http.StatusServiceUnavailable},
		{ErrUnauthorized, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, Classify(tc.kind, errors.New("claim CLM-1")))
		require.Equal(t, tc.status, rec.Code)
		require.Equal(t, "claim CLM-1", problem(t, rec).Detail)
	}
}

func TestRespondErrorHidesUnknownErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, errors.New("pq: password authentication failed"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Empty(t, problem(t, rec).Detail)
}

func TestClassifyKeepsChain(t *testing.T) {
	base := errors.New("base")
	err := Classify(ErrNotFound, base)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, err, base)
	require.Equal(t, "base", err.Error())
	require.NoError(t, Classify(ErrNotFound, nil))
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Amount float64 `json:"amount"`
	}
	decode := func(body string) (payload, error) {
		var p payload
		err := DecodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), &p)
		return p, err
	}

	p, err := decode(`{"amount":12.5}`)
	require.NoError(t, err)
	require.Equal(t, 12.5, p.Amount)

	for _, body := range []string{``, `{"amout":1}`, `{"amount":1}{"amount":2}`, `{"amount":"x"}`} {
		_, err := decode(body)
		require.ErrorIs(t, err, ErrValidation, "body %q", body)
	}
}
