package auth

import (
	"context"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"partsCatalog/internal/testutil"
)

const healthCheck = "/grpc.health.v1.Health/Check"

func TestParseFromMD(t *testing.T) {
	tokens := newTestTokens(t, &fakeClock{now: epoch})

	if _, err := ParseFromMD(context.Background(), tokens); err == nil {
		t.Fatalf("expected error for missing metadata")
	}
	tok := testutil.GenerateJWTHS256(t, testSecret, "alice@example.com", epoch, time.Hour)
	sub, err := ParseFromMD(testutil.CtxWithBearer(context.Background(), tok), tokens)
	if err != nil || sub != "alice@example.com" {
		t.Fatalf("ParseFromMD = %q, %v", sub, err)
	}
	bad := testutil.GenerateJWTHS256(t, "wrong", "alice@example.com", epoch, time.Hour)
	if _, err := ParseFromMD(testutil.CtxWithBearer(context.Background(), bad), tokens); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestUnaryAuthInterceptor(t *testing.T) {
	tokens := newTestTokens(t, &fakeClock{now: epoch})
	// allowlisted method should bypass auth
	interceptor := NewUnaryAuthInterceptor(tokens, healthCheck)

	// 1) Allowlisted path: no header -> handler executes, no subject
	hCalled := false
	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: healthCheck}, func(ctx context.Context, req any) (any, error) {
		hCalled = true
		if _, ok := SubjectFromContext(ctx); ok {
			t.Fatalf("expected no subject on allowlisted path")
		}
		return 123, nil
	})
	if err != nil || !hCalled {
		t.Fatalf("allowlisted handler err=%v called=%v", err, hCalled)
	}

	// 2) Protected path without token -> Unauthenticated
	_, err = interceptor(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Op"}, func(ctx context.Context, req any) (any, error) {
		t.Fatalf("handler must not run")
		return nil, nil
	})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}

	// 3) Authenticated path: with token -> subject injected
	tok := testutil.GenerateJWTHS256(t, testSecret, "bob@example.com", epoch, time.Hour)
	ctx := testutil.CtxWithBearer(context.Background(), tok)
	_, err = interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/svc/Op"}, func(ctx context.Context, req any) (any, error) {
		sub, ok := SubjectFromContext(ctx)
		if !ok || sub != "bob@example.com" {
			t.Fatalf("subject not injected: %q ok=%v", sub, ok)
		}
		return nil, nil
	})
	if err != nil {
		t.Fatalf("interceptor auth path: %v", err)
	}
}

type fakeStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *fakeStream) Context() context.Context { return s.ctx }

func TestStreamAuthInterceptor(t *testing.T) {
	tokens := newTestTokens(t, &fakeClock{now: epoch})
	interceptor := NewStreamAuthInterceptor(tokens, "/grpc.health.v1.Health/Watch")

	err := interceptor(nil, &fakeStream{ctx: context.Background()}, &grpc.StreamServerInfo{FullMethod: "/grpc.health.v1.Health/Watch"},
		func(srv any, ss grpc.ServerStream) error { return nil })
	if err != nil {
		t.Fatalf("allowlisted stream: %v", err)
	}

	err = interceptor(nil, &fakeStream{ctx: context.Background()}, &grpc.StreamServerInfo{FullMethod: "/svc/Stream"},
		func(srv any, ss grpc.ServerStream) error { return nil })
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}

	tok := testutil.GenerateJWTHS256(t, testSecret, "carol@example.com", epoch, time.Hour)
	err = interceptor(nil, &fakeStream{ctx: testutil.CtxWithBearer(context.Background(), tok)}, &grpc.StreamServerInfo{FullMethod: "/svc/Stream"},
		func(srv any, ss grpc.ServerStream) error {
			if sub, ok := SubjectFromContext(ss.Context()); !ok || sub != "carol@example.com" {
				t.Fatalf("subject not injected: %q", sub)
			}
			return nil
		})
	if err != nil {
		t.Fatalf("authenticated stream: %v", err)
	}
}
