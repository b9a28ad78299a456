package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestResolverOpaqueSessionToken(t *testing.T) {
	redis := miniredis.RunT(t)
	if err := redis.Set(sessionKeyPrefix+"tok-1", "user-1"); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	sessions := NewRedisSessionStore(redis.Addr(), "")
	defer sessions.Close()

	resolver := NewResolver(nil, sessions)

	user, err := resolver.Resolve(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if user.ID != "user-1" {
		t.Fatalf("user id = %q, want user-1", user.ID)
	}

	if _, err := resolver.Resolve(context.Background(), "tok-unknown"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("unknown token: got %v, want ErrUnauthenticated", err)
	}
}

func TestResolverEmptyToken(t *testing.T) {
	resolver := NewResolver(nil, nil)
	if _, err := resolver.Resolve(context.Background(), "   "); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("empty token: got %v, want ErrUnauthenticated", err)
	}
}

func TestResolverJWTWithoutVerifierFails(t *testing.T) {
	resolver := NewResolver(nil, nil)
	if _, err := resolver.Resolve(context.Background(), "a.b.c"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("jwt without verifier: got %v, want ErrUnauthenticated", err)
	}
}
