package session

import (
	"strings"

	"github.com/iksnae/openup-cli/internal"
)

// OnboardingStep is the current page of the onboarding wizard
type OnboardingStep int

const (
	StepRoleSelect OnboardingStep = iota + 1
	StepProfileEntry
)

// onboardingSteps is the number of pages, used for the progress ratio
const onboardingSteps = 2

func (s OnboardingStep) String() string {
	switch s {
	case StepRoleSelect:
		return "role-select"
	case StepProfileEntry:
		return "profile-entry"
	default:
		return "unknown"
	}
}

// Label is the short title shown in the progress header
func (s OnboardingStep) Label() string {
	switch s {
	case StepRoleSelect:
		return "Role"
	case StepProfileEntry:
		return "Profile"
	default:
		return ""
	}
}

// Onboarding is the two-step wizard collecting role, name and context.
// It holds local form state only.
type Onboarding struct {
	step    OnboardingStep
	role    internal.Role
	name    string
	context string
}

// NewOnboarding starts a wizard on the role selection step
func NewOnboarding() *Onboarding {
	return &Onboarding{step: StepRoleSelect}
}

// Step returns the current step
func (o *Onboarding) Step() OnboardingStep { return o.step }

// Role returns the selected role, empty before selection
func (o *Onboarding) Role() internal.Role { return o.role }

// Name returns the display name typed so far
func (o *Onboarding) Name() string { return o.name }

// Context returns the goals/expertise text typed so far
func (o *Onboarding) Context() string { return o.context }

// Progress returns the completed fraction of the wizard
func (o *Onboarding) Progress() float64 {
	return float64(o.step) / onboardingSteps
}

// SelectRole stores the role and advances to profile entry
func (o *Onboarding) SelectRole(role internal.Role) error {
	if o.step != StepRoleSelect {
		return &internal.ValidationError{Field: "role", Reason: "role can only be chosen on the first step"}
	}
	if !role.Valid() {
		return &internal.ValidationError{Field: "role", Reason: "must be mentee or mentor"}
	}
	o.role = role
	o.step = StepProfileEntry
	return nil
}

// Back returns to role selection keeping the chosen role and typed fields
func (o *Onboarding) Back() {
	if o.step == StepProfileEntry {
		o.step = StepRoleSelect
	}
}

// SetName updates the display name
func (o *Onboarding) SetName(name string) { o.name = name }

// SetContext updates the goals/expertise text
func (o *Onboarding) SetContext(context string) { o.context = context }

// ContextPrompt is the role-dependent label for the context field
func (o *Onboarding) ContextPrompt() string {
	if o.role == internal.RoleMentee {
		return "What are your goals?"
	}
	return "What is your expertise?"
}

// ContextPlaceholder is the role-dependent hint for the context field
func (o *Onboarding) ContextPlaceholder() string {
	if o.role == internal.RoleMentee {
		return "Describe what you want to achieve..."
	}
	return "Describe your background and what you can teach..."
}

// CanComplete reports whether the complete intent would be accepted
func (o *Onboarding) CanComplete() bool {
	return o.validate() == nil
}

func (o *Onboarding) validate() error {
	if o.step != StepProfileEntry {
		return &internal.ValidationError{Field: "step", Reason: "profile entry not reached"}
	}
	if !o.role.Valid() {
		return &internal.ValidationError{Field: "role", Reason: "must be selected"}
	}
	if strings.TrimSpace(o.name) == "" {
		return &internal.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(o.context) == "" {
		return &internal.ValidationError{Field: "context", Reason: "must not be empty"}
	}
	return nil
}

// Complete returns the finished profile, or a ValidationError while the
// form is incomplete
func (o *Onboarding) Complete() (internal.Profile, error) {
	if err := o.validate(); err != nil {
		return internal.Profile{}, err
	}
	return internal.Profile{
		Role:    o.role,
		Name:    strings.TrimSpace(o.name),
		Context: strings.TrimSpace(o.context),
	}, nil
}
