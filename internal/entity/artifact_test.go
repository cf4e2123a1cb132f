package entity_test

import (
	"testing"

	"dub-pipeline-service/internal/entity"
)

func TestValidateSegments(t *testing.T) {
	cases := []struct {
		name    string
		segs    []entity.Segment
		wantErr bool
	}{
		{
			name: "well formed",
			segs: []entity.Segment{
				{ID: 0, Start: 0, End: 1.5, Speaker: "A"},
				{ID: 1, Start: 1.5, End: 3.0, Speaker: "B"},
				{ID: 2, Start: 3.0, End: 4.2, Speaker: "A"},
			},
		},
		{
			name: "interleaved speakers may touch but not overlap",
			segs: []entity.Segment{
				{ID: 0, Start: 0, End: 2.0, Speaker: "A"},
				{ID: 1, Start: 1.0, End: 3.0, Speaker: "B"},
				{ID: 2, Start: 2.0, End: 4.0, Speaker: "A"},
			},
		},
		{
			name:    "end before start",
			segs:    []entity.Segment{{ID: 0, Start: 2.0, End: 1.0, Speaker: "A"}},
			wantErr: true,
		},
		{
			name: "timing goes backwards",
			segs: []entity.Segment{
				{ID: 0, Start: 2.0, End: 3.0, Speaker: "A"},
				{ID: 1, Start: 1.0, End: 2.0, Speaker: "B"},
			},
			wantErr: true,
		},
		{
			name: "same speaker overlap",
			segs: []entity.Segment{
				{ID: 0, Start: 0, End: 2.0, Speaker: "A"},
				{ID: 1, Start: 1.0, End: 3.0, Speaker: "A"},
			},
			wantErr: true,
		},
		{
			name: "empty is fine",
			segs: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := entity.ValidateSegments(tc.segs)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected nil error, got %v", err)
			}
		})
	}
}
