package outreach

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Default personalization values used when neither the lead nor the
// profile supplies one.
const (
	DefaultContactName = "Decision Maker"
	DefaultIndustry    = "your industry"
	DefaultTone        = "Professional"
	DefaultLength      = "Medium"
)

// Tones and Lengths list the supported style options.
var (
	Tones   = []string{"Formal", "Professional", "Casual", "Friendly"}
	Lengths = []string{"Very Short", "Short", "Medium", "Detailed"}
)

// Profile carries sender-wide outreach defaults. Per-lead values win.
type Profile struct {
	SenderName string `yaml:"sender_name"`
	Tone       string `yaml:"tone"`
	Length     string `yaml:"email_length"`
	ValueProp  string `yaml:"value_prop"`
}

// DefaultProfile returns the built-in profile.
func DefaultProfile() Profile {
	return Profile{Tone: DefaultTone, Length: DefaultLength}
}

// LoadProfile reads a YAML profile from path. An empty path returns the
// default profile. Fields left blank in the file keep their defaults.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return p, eris.Wrapf(err, "outreach: read profile %s", path)
	}

	var file Profile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return p, eris.Wrapf(err, "outreach: parse profile %s", path)
	}

	if file.SenderName != "" {
		p.SenderName = file.SenderName
	}
	if file.Tone != "" {
		p.Tone = file.Tone
	}
	if file.Length != "" {
		p.Length = file.Length
	}
	p.ValueProp = file.ValueProp
	return p, nil
}
