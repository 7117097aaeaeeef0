package org

import (
	"fmt"
	"strings"
)

// Org describes one Salesforce org connection as an opaque identity blob.
// The planner never connects to an org; it only copies these descriptors
// into job and rollback configurations for the external migration engine.
type Org struct {
	Alias       string `json:"alias" mapstructure:"alias" yaml:"alias"`
	InstanceURL string `json:"instanceUrl,omitempty" mapstructure:"instance_url" yaml:"instance_url,omitempty"`
	Username    string `json:"username,omitempty" mapstructure:"username" yaml:"username,omitempty"`
	APIVersion  string `json:"apiVersion,omitempty" mapstructure:"api_version" yaml:"api_version,omitempty"`
}

// Validate checks that the descriptor carries enough identity to be
// meaningful to the engine.
func (o *Org) Validate() error {
	if strings.TrimSpace(o.Alias) == "" && strings.TrimSpace(o.Username) == "" {
		return fmt.Errorf("org descriptor requires an alias or username")
	}
	if o.InstanceURL != "" && !strings.HasPrefix(o.InstanceURL, "https://") {
		return fmt.Errorf("org %s: instance URL must use https", o.Label())
	}
	return nil
}

// Label returns the best human-readable identifier for the org.
func (o *Org) Label() string {
	if o.Alias != "" {
		return o.Alias
	}
	return o.Username
}

// Pair is the source/target org pair for one migration run.
type Pair struct {
	Source Org `json:"sourceOrg" mapstructure:"source" yaml:"source"`
	Target Org `json:"targetOrg" mapstructure:"target" yaml:"target"`
}

// Validate validates both descriptors.
func (p *Pair) Validate() error {
	if err := p.Source.Validate(); err != nil {
		return fmt.Errorf("source org: %w", err)
	}
	if err := p.Target.Validate(); err != nil {
		return fmt.Errorf("target org: %w", err)
	}
	return nil
}

// Swapped returns the pair with the org roles exchanged. Rollback plans use
// the swapped pair; see the assembler for the compatibility note on this.
func (p Pair) Swapped() Pair {
	return Pair{Source: p.Target, Target: p.Source}
}
