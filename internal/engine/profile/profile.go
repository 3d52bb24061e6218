// Package profile loads the user's structured résumé document. The profile is
// read once at startup and is read-only for the rest of the run.
package profile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Section names recognized by the answer engine's section router.
const (
	SectionPersonalInformation = "personal_information"
	SectionSelfIdentification  = "self_identification"
	SectionLegalAuthorization  = "legal_authorization"
	SectionWorkPreferences     = "work_preferences"
	SectionEducationDetails    = "education_details"
	SectionExperienceDetails   = "experience_details"
	SectionProjects            = "projects"
	SectionAvailability        = "availability"
	SectionSalaryExpectations  = "salary_expectations"
	SectionCertifications      = "certifications"
	SectionLanguages           = "languages"
	SectionInterests           = "interests"
)

// SectionNames lists every routable section in router-prompt order.
var SectionNames = []string{
	SectionPersonalInformation,
	SectionSelfIdentification,
	SectionLegalAuthorization,
	SectionWorkPreferences,
	SectionEducationDetails,
	SectionExperienceDetails,
	SectionProjects,
	SectionAvailability,
	SectionSalaryExpectations,
	SectionCertifications,
	SectionLanguages,
	SectionInterests,
}

// Profile is the user-provided résumé document. Section payloads stay as
// raw YAML nodes: prompts receive them re-serialized verbatim, so the schema
// inside each section is the user's business, not ours.
type Profile struct {
	sections map[string]string
	full     string
}

// Load reads the profile YAML from path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profile: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a Profile from raw YAML.
func Parse(data []byte) (*Profile, error) {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("profile: parse: %w", err)
	}

	p := &Profile{sections: make(map[string]string, len(doc)), full: string(data)}
	for name, node := range doc {
		out, err := yaml.Marshal(&node)
		if err != nil {
			continue
		}
		p.sections[strings.ToLower(name)] = strings.TrimSpace(string(out))
	}
	return p, nil
}

// Section returns the serialized YAML of one named section.
func (p *Profile) Section(name string) (string, bool) {
	s, ok := p.sections[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// Full returns the whole profile document as text, for prompts that need the
// entire résumé (cover letter, résumé generation, suitability).
func (p *Profile) Full() string {
	return p.full
}
