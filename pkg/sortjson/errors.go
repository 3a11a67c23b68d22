package sortjson

import "fmt"

// ParseError reports malformed structure in the input document.
type ParseError struct {
	Offset int
	Path   string
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (offset %d, path %s)", e.Msg, e.Offset, e.Path)
}

// KeyDuplicationError is returned when two keys of the same object decode to
// the same value and duplicate keys are not skipped.
type KeyDuplicationError struct {
	Key  string
	Path string
}

func (e *KeyDuplicationError) Error() string {
	return fmt.Sprintf("duplicated key '%s' was found at %s", e.Key, e.Path)
}

// TooManyKeysError is returned when one object level holds more keys than the
// configured limit.
type TooManyKeysError struct {
	Path  string
	Limit int
}

func (e *TooManyKeysError) Error() string {
	return fmt.Sprintf("object at %s has more than %d keys", e.Path, e.Limit)
}

// ConfigurationError reports an invalid writer setting.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return e.Msg
}
