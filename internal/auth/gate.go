// Package auth decides who may see which page and verifies operator credentials.
package auth

import "strings"

const (
	DefaultProtectedPrefix = "/dashboard"
	DefaultLoginPath       = "/login"
)

type Verdict int

const (
	Allow Verdict = iota
	Deny
	Redirect
)

func (v Verdict) String() string {
	switch v {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

// Decision is the gate's answer for one request. Target is set only for Redirect.
type Decision struct {
	Verdict Verdict
	Target  string
}

// Gate guards every path under ProtectedPrefix. Signed-in users who wander
// outside it are sent back to the prefix root.
type Gate struct {
	ProtectedPrefix string
	LoginPath       string
}

func NewGate() Gate {
	return Gate{ProtectedPrefix: DefaultProtectedPrefix, LoginPath: DefaultLoginPath}
}

// Authorize is a pure function of its inputs. The prefix match is literal:
// "/reports/dashboard" is not protected.
func (g Gate) Authorize(authenticated bool, path string) Decision {
	if strings.HasPrefix(path, g.ProtectedPrefix) {
		if authenticated {
			return Decision{Verdict: Allow}
		}
		return Decision{Verdict: Deny}
	}
	if authenticated {
		return Decision{Verdict: Redirect, Target: g.ProtectedPrefix}
	}
	return Decision{Verdict: Allow}
}
