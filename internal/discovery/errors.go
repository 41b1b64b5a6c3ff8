package discovery

import "fmt"

// ConfigError reports invalid discovery options. It is returned
// synchronously, before any radio activity starts.
type ConfigError struct {
	Option string
	Msg    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid discovery option %s: %s", e.Option, e.Msg)
}

// Is allows errors.Is to match any *ConfigError, or one for the same option
// when the target specifies it.
func (e *ConfigError) Is(target error) bool {
	t, ok := target.(*ConfigError)
	if !ok {
		return false
	}
	return t.Option == "" || t.Option == e.Option
}

// ErrConfig matches any *ConfigError via errors.Is.
var ErrConfig = &ConfigError{}
