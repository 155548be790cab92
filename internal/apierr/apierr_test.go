package apierr

import (
	"errors"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Code]int{
		BadRequest:  http.StatusBadRequest,
		Unavailable: http.StatusServiceUnavailable,
		Forbidden:   http.StatusForbidden,
		Internal:    http.StatusInternalServerError,
		StoreInit:   http.StatusInternalServerError,
		Corrupt:     http.StatusInternalServerError,
	}
	for code, want := range cases {
		got := New(code, "x").HTTPStatus()
		if got != want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", code, got, want)
		}
	}
}

func TestWrapPreservesCauseForUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(Unavailable, "save progress", cause)

	if !errors.Is(err, cause) {
		t.Fatal("errors.Is(err, cause) = false, want true")
	}
	if err.Error() == "" {
		t.Fatal("Error() is empty")
	}
}

func TestAsAndCodeOf(t *testing.T) {
	err := New(Forbidden, "unknown route")

	apiErr, ok := As(err)
	if !ok || apiErr.Code != Forbidden {
		t.Fatalf("As() = (%v, %v), want (Forbidden, true)", apiErr, ok)
	}

	if CodeOf(err) != Forbidden {
		t.Fatalf("CodeOf() = %q, want Forbidden", CodeOf(err))
	}

	plain := errors.New("not classified")
	if CodeOf(plain) != Internal {
		t.Fatalf("CodeOf(plain) = %q, want Internal", CodeOf(plain))
	}
	if _, ok := As(plain); ok {
		t.Fatal("As(plain) = true, want false")
	}
}

func TestCorruptMapsToInternalStatus(t *testing.T) {
	corrupt := New(Corrupt, "bad object_type")
	internal := New(Internal, "boom")
	if corrupt.HTTPStatus() != internal.HTTPStatus() {
		t.Fatalf("Corrupt status %d != Internal status %d", corrupt.HTTPStatus(), internal.HTTPStatus())
	}
}
