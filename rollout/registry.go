package rollout

import (
	"fmt"
	"sort"
	"strings"
)

// PolicyFactory builds a policy for one rollout.
type PolicyFactory func() (Policy, error)

// EnvFactory builds an environment, optionally shaped by the policy it will
// be paired with.
type EnvFactory func(p Policy) (Environment, error)

// Registry holds named policy and environment factories. Any registered
// policy can be combined with any registered environment.
type Registry struct {
	policies map[string]PolicyFactory
	envs     map[string]EnvFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		policies: map[string]PolicyFactory{},
		envs:     map[string]EnvFactory{},
	}
}

// RegisterPolicy adds a policy factory under name.
func (r *Registry) RegisterPolicy(name string, f PolicyFactory) error {
	if name == "" || f == nil {
		return fmt.Errorf("policy %q: name and factory are required", name)
	}
	if _, ok := r.policies[name]; ok {
		return fmt.Errorf("policy %q already registered", name)
	}
	r.policies[name] = f
	return nil
}

// RegisterEnv adds an environment factory under name.
func (r *Registry) RegisterEnv(name string, f EnvFactory) error {
	if name == "" || f == nil {
		return fmt.Errorf("environment %q: name and factory are required", name)
	}
	if _, ok := r.envs[name]; ok {
		return fmt.Errorf("environment %q already registered", name)
	}
	r.envs[name] = f
	return nil
}

// Policies returns the registered policy names, sorted.
func (r *Registry) Policies() []string { return sortedKeys(r.policies) }

// Envs returns the registered environment names, sorted.
func (r *Registry) Envs() []string { return sortedKeys(r.envs) }

// Compose builds a Driver pairing the named policy and environment.
func (r *Registry) Compose(policy, env string) (*Driver, error) {
	pf, ok := r.policies[policy]
	if !ok {
		return nil, fmt.Errorf("unknown policy %q (have %s)", policy, strings.Join(r.Policies(), ", "))
	}
	ef, ok := r.envs[env]
	if !ok {
		return nil, fmt.Errorf("unknown environment %q (have %s)", env, strings.Join(r.Envs(), ", "))
	}
	p, err := pf()
	if err != nil {
		return nil, fmt.Errorf("build policy %s: %w", policy, err)
	}
	e, err := ef(p)
	if err != nil {
		return nil, fmt.Errorf("build environment %s: %w", env, err)
	}
	return NewDriver(p, e)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
