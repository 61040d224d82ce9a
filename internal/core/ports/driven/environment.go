package driven

// Environment provides process environment lookups.
// Implementations may merge a .env file beneath the real environment.
type Environment interface {
	// Lookup returns the value of key and whether it is set.
	Lookup(key string) (string, bool)
}
