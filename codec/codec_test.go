package codec_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	serializr "github.com/reoring/serializr"
	"github.com/reoring/serializr/codec"
)

func TestTimeRFC3339_Roundtrip(t *testing.T) {
	c := codec.TimeRFC3339()
	ctx := context.Background()

	in := "2025-01-01T00:00:00Z"
	got, err := c.Decode(ctx, in)
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if !got.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time: %v", got)
	}
	out, err := c.Encode(ctx, got)
	if err != nil {
		t.Fatalf("encode err: %v", err)
	}
	if out != in {
		t.Fatalf("roundtrip mismatch: %s != %s", out, in)
	}
}

func TestTimeRFC3339_NormalizesToUTC(t *testing.T) {
	c := codec.TimeRFC3339()
	jst := time.FixedZone("JST", 9*3600)
	out, _ := c.Encode(context.Background(), time.Date(2025, 1, 1, 9, 0, 0, 0, jst))
	if out != "2025-01-01T00:00:00Z" {
		t.Fatalf("unexpected: %s", out)
	}
}

func TestTimeRFC3339_InvalidFormat(t *testing.T) {
	_, err := codec.TimeRFC3339().Decode(context.Background(), "01/02/2025")
	iss, ok := serializr.AsIssues(err)
	if !ok || iss[0].Code != serializr.CodeInvalidFormat {
		t.Fatalf("expected invalid_format, got %v", err)
	}
}

func TestIdentityAndFunc(t *testing.T) {
	ctx := context.Background()
	if v, err := codec.Identity[string]().Decode(ctx, "x"); err != nil || v != "x" {
		t.Fatalf("identity: %v %v", v, err)
	}
	c := codec.Func(
		func(_ context.Context, s string) (int, error) { return strconv.Atoi(s) },
		func(_ context.Context, n int) (string, error) {
			if n < 0 {
				return "", errors.New("negative")
			}
			return strconv.Itoa(n), nil
		},
	)
	if n, err := c.Decode(ctx, "12"); err != nil || n != 12 {
		t.Fatalf("decode: %v %v", n, err)
	}
	if _, err := c.Encode(ctx, -1); err == nil {
		t.Fatalf("expected encode error")
	}
}
