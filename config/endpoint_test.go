package config

import (
	"testing"

	. "github.com/onsi/gomega"
)

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		mode string
		want string
	}{
		{"production", ""},
		{"development", "http://localhost:5000"},
		{"test", "http://localhost:5000"},
		{"", "http://localhost:5000"},
		{"Production", "http://localhost:5000"},
		{" production", "http://localhost:5000"},
		{"prod", "http://localhost:5000"},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			if got := ResolveBaseURL(tt.mode); got != tt.want {
				t.Errorf("ResolveBaseURL(%q) = %q, want %q", tt.mode, got, tt.want)
			}
		})
	}
}

func TestResolveBaseURLIsStable(t *testing.T) {
	g := NewWithT(t)
	for _, m := range []string{"production", "development", "staging", ""} {
		g.Expect(ResolveBaseURL(m)).To(Equal(ResolveBaseURL(m)))
	}
}

func TestParseMode(t *testing.T) {
	g := NewWithT(t)
	g.Expect(ParseMode("production")).To(Equal(Production))
	g.Expect(ParseMode("development")).To(Equal(Development))
	g.Expect(ParseMode("PRODUCTION")).To(Equal(Development))
	g.Expect(ParseMode("")).To(Equal(Development))
	g.Expect(Production.IsProduction()).To(BeTrue())
	g.Expect(Development.IsProduction()).To(BeFalse())
}

func TestNewEndpoint(t *testing.T) {
	g := NewWithT(t)

	prod := NewEndpoint(Production, "")
	g.Expect(prod.BaseURL()).To(BeEmpty())
	g.Expect(prod.IsRelative()).To(BeTrue())
	g.Expect(prod.Mode()).To(Equal(Production))

	dev := NewEndpoint(Development, "")
	g.Expect(dev.BaseURL()).To(Equal("http://localhost:5000"))
	g.Expect(dev.IsRelative()).To(BeFalse())
}

func TestNewEndpointOverride(t *testing.T) {
	g := NewWithT(t)

	dev := NewEndpoint(Development, "http://10.0.0.5:5001/")
	g.Expect(dev.BaseURL()).To(Equal("http://10.0.0.5:5001"))

	// production never picks up the development override
	prod := NewEndpoint(Production, "http://10.0.0.5:5001")
	g.Expect(prod.BaseURL()).To(BeEmpty())

	blank := NewEndpoint(Development, "   ")
	g.Expect(blank.BaseURL()).To(Equal(DevelopmentBaseURL))
}

func TestEndpointResolve(t *testing.T) {
	tests := []struct {
		name string
		ep   Endpoint
		path string
		want string
	}{
		{"dev api", NewEndpoint(Development, ""), "/api/chat", "http://localhost:5000/api/chat"},
		{"dev no slash", NewEndpoint(Development, ""), "api/chat", "http://localhost:5000/api/chat"},
		{"dev empty", NewEndpoint(Development, ""), "", "http://localhost:5000/"},
		{"prod api", NewEndpoint(Production, ""), "/api/chat", "/api/chat"},
		{"prod query", NewEndpoint(Production, ""), "/api/download?file=a.xlsx", "/api/download?file=a.xlsx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ep.Resolve(tt.path); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
