package reportsource

import (
	"context"
	"fmt"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/fleet-risk-dashboard/internal/domain/reportarchive"
)

// ValkeySource reads report documents from a Valkey-compatible database.
// Names live in the sorted set "{prefix}:index" (all scores zero, so members
// sort lexicographically) and each payload under "{prefix}:report:{name}".
type ValkeySource struct {
	client valkey.Client
	prefix string
}

// NewValkeySource constructs a new source backed by Valkey.
func NewValkeySource(client valkey.Client, prefix string) *ValkeySource {
	if prefix == "" {
		prefix = "weekly"
	}
	return &ValkeySource{client: client, prefix: prefix}
}

// List implements reportarchive.Source.
func (s *ValkeySource) List(ctx context.Context) ([]reportarchive.Entry, error) {
	resp := s.client.Do(ctx, s.client.B().Zrange().Key(s.indexKey()).Min("0").Max("-1").Build())
	names, err := resp.AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]reportarchive.Entry, 0, len(names))
	for _, name := range names {
		out = append(out, reportarchive.NewEntry(name))
	}
	return out, nil
}

// Read implements reportarchive.Source.
func (s *ValkeySource) Read(ctx context.Context, name string) ([]byte, error) {
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.reportKey(name)).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, reportarchive.ErrNotFound
		}
		return nil, err
	}
	return payload, nil
}

func (s *ValkeySource) indexKey() string {
	return fmt.Sprintf("%s:index", s.prefix)
}

func (s *ValkeySource) reportKey(name string) string {
	return fmt.Sprintf("%s:report:%s", s.prefix, name)
}

var _ reportarchive.Source = (*ValkeySource)(nil)
