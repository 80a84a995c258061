package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_Compile(t *testing.T) {
	tests := []struct {
		name      string
		filter    Filter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "empty",
			filter:    Filter{},
			wantWhere: "",
			wantArgs:  []any{},
		},
		{
			name:      "status and limit",
			filter:    Filter{Status: StatusFailed, Limit: 5},
			wantWhere: " WHERE status = ?",
			wantArgs:  []any{"failed", 5},
		},
		{
			name:      "every field in column order",
			filter:    Filter{Status: StatusOK, Document: "add.cue", GraphHash: "abc", ErrorCode: "E305"},
			wantWhere: " WHERE status = ? AND document = ? AND graph_hash = ? AND error_code = ?",
			wantArgs:  []any{"ok", "add.cue", "abc", "E305"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := tt.filter.compile()

			assert.Contains(t, query, selectCompilation+tt.wantWhere+" ORDER BY seq DESC")
			assert.Equal(t, tt.wantArgs, args)
			assert.NotContains(t, query, "add.cue", "values are parameters, never interpolated")
		})
	}
}

func TestFind(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, FromResult("add.cue", nil, compileAdd(t))))
	require.NoError(t, s.Record(ctx, FromResult("broken.cue", nil, compileMissingInput(t))))
	require.NoError(t, s.Record(ctx, FromResult("add.cue", nil, compileAdd(t))))

	tests := []struct {
		name    string
		filter  Filter
		wantIDs []string
	}{
		{"everything", Filter{}, []string{"run-0003", "run-0002", "run-0001"}},
		{"failed only", Filter{Status: StatusFailed}, []string{"run-0002"}},
		{"by document", Filter{Document: "add.cue"}, []string{"run-0003", "run-0001"}},
		{"by document with limit", Filter{Document: "add.cue", Limit: 1}, []string{"run-0003"}},
		{"by error code", Filter{ErrorCode: "E305"}, []string{"run-0002"}},
		{"no match", Filter{Document: "add.cue", Status: StatusFailed}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Find(ctx, tt.filter)
			require.NoError(t, err)
			require.NotNil(t, got)

			ids := make([]string, len(got))
			for i, c := range got {
				ids[i] = c.ID
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}
