package types

// Platform identifies which platform a test case targets. A case marked
// PlatformAll is eligible under any platform filter.
type Platform string

const (
	PlatformAll     Platform = "all"
	PlatformWeb     Platform = "web"
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
)

func (p Platform) Valid() bool {
	switch p {
	case PlatformAll, PlatformWeb, PlatformAndroid, PlatformIOS:
		return true
	}
	return false
}

// Matches reports whether a case with this platform should run under the
// given filter platform. An empty or "all" filter matches everything, and a
// case tagged "all" runs under every filter.
func (p Platform) Matches(filter Platform) bool {
	return filter == "" || filter == PlatformAll || p == PlatformAll || p == filter
}

type TestCase struct {
	ID       string      `yaml:"id" json:"id"`
	Name     string      `yaml:"name" json:"name"`
	Platform Platform    `yaml:"platform" json:"platform"`
	Language string      `yaml:"language,omitempty" json:"language,omitempty"`
	Code     string      `yaml:"code" json:"code"`
	Context  string      `yaml:"context,omitempty" json:"context,omitempty"`
	Category string      `yaml:"-" json:"category"`
	Expected Expectation `yaml:"expected" json:"expected"`
}

// Expectation is the ground truth for a test case. Detected is the single
// authoritative verdict; the remaining fields refine what a correct finding
// should look like.
type Expectation struct {
	Detected        bool   `yaml:"detected" json:"detected"`
	Severity        string `yaml:"severity,omitempty" json:"severity,omitempty"`
	Principle       string `yaml:"principle,omitempty" json:"principle,omitempty"`
	Pattern         string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	MessageContains string `yaml:"message_contains,omitempty" json:"message_contains,omitempty"`
}
