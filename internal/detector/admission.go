package detector

import (
	"context"
	"sync"
)

// acquire takes the single inference slot, or fails when ctx ends or the
// detector starts draining. The returned release func is idempotent.
func (d *Detector) acquire(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}
	select {
	case d.slot <- struct{}{}:
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-d.closing:
		return func() {}, ErrDependencyUnavailable("detector is shutting down")
	}
	select {
	case <-d.closing:
		// Close may be waiting on this slot; hand it over.
		<-d.slot
		return func() {}, ErrDependencyUnavailable("detector is shutting down")
	default:
	}
	var once sync.Once
	return func() { once.Do(func() { <-d.slot }) }, nil
}

// busy reports whether an inference holds the slot.
func (d *Detector) busy() bool { return len(d.slot) > 0 }
