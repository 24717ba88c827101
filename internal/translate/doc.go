// Package translate wraps the external generative image services behind the
// Provider interface. Each TranslateImage call makes exactly one outbound
// request; errors come back as classified *Failure values (transient,
// permanent or auth) so callers can decide whether a retry makes sense.
package translate
