package domain

import (
	"errors"
	"testing"
)

func validSpec() SourceSpec {
	return SourceSpec{
		Name: "reuters",
		Tier: TierCore,
		Kind: QueryKindRSS,
	}
}

func TestSourceSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SourceSpec)
		wantErr error
	}{
		{
			name:   "valid core rss spec",
			mutate: func(s *SourceSpec) {},
		},
		{
			name: "valid site search with template",
			mutate: func(s *SourceSpec) {
				s.Kind = QueryKindSiteSearch
				s.QueryTemplate = "site:reuters.com"
			},
		},
		{
			name:    "empty name",
			mutate:  func(s *SourceSpec) { s.Name = "  " },
			wantErr: ErrEmptySourceName,
		},
		{
			name:    "unknown tier",
			mutate:  func(s *SourceSpec) { s.Tier = "premium" },
			wantErr: ErrInvalidTier,
		},
		{
			name:    "unknown kind",
			mutate:  func(s *SourceSpec) { s.Kind = "carrier_pigeon" },
			wantErr: ErrInvalidQueryKind,
		},
		{
			name: "site search without template",
			mutate: func(s *SourceSpec) {
				s.Kind = QueryKindSiteSearch
			},
			wantErr: ErrInvalidSourceSpec,
		},
		{
			name:    "negative min",
			mutate:  func(s *SourceSpec) { s.MinItems = -1 },
			wantErr: ErrInvalidSourceSpec,
		},
		{
			name: "min above max",
			mutate: func(s *SourceSpec) {
				s.MinItems = 5
				s.MaxItems = 3
			},
			wantErr: ErrInvalidSourceSpec,
		},
		{
			name: "max zero means unbounded",
			mutate: func(s *SourceSpec) {
				s.MinItems = 5
				s.MaxItems = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := validSpec()
			tt.mutate(&spec)
			err := spec.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	s := validSpec()
	if s.DisplayName() != "reuters" {
		t.Errorf("DisplayName = %q, want spec name", s.DisplayName())
	}
	s.MatchNames = []string{"Reuters", "reuters.com"}
	if s.DisplayName() != "Reuters" {
		t.Errorf("DisplayName = %q, want first match name", s.DisplayName())
	}
}

func TestSiteHost(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"plain site restriction", "site:Example.com", "example.com"},
		{"template with extra terms", "site:example.com breaking news", "example.com"},
		{"prefix before site token", "%s site:example.com", "example.com"},
		{"trailing dot stripped", "site:example.com.", "example.com"},
		{"no site restriction", "latest news %s", ""},
		{"empty template", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSpec()
			s.QueryTemplate = tt.template
			if got := s.SiteHost(); got != tt.want {
				t.Errorf("SiteHost(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestTierAndKindValidity(t *testing.T) {
	if !TierCore.IsValid() || !TierDiscovered.IsValid() {
		t.Error("known tiers should be valid")
	}
	if Tier("gold").IsValid() {
		t.Error("unknown tier must be invalid")
	}
	for _, k := range []QueryKind{QueryKindRSS, QueryKindWebSearch, QueryKindSiteSearch} {
		if !k.IsValid() {
			t.Errorf("kind %q should be valid", k)
		}
	}
	if QueryKind("grpc").IsValid() {
		t.Error("unknown kind must be invalid")
	}
}
