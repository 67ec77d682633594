package motors

import (
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/kestrel/logging"
)

// A CreateFrame creates an uninitialized frame implementation.
type CreateFrame func(logger logging.Logger, driver Driver, opts ...Option) Motors

var (
	frameRegistryMu sync.RWMutex
	frameRegistry   = map[FrameClass]CreateFrame{}
)

// RegisterFrame registers a frame class to a creator.
func RegisterFrame(class FrameClass, creator CreateFrame) {
	frameRegistryMu.Lock()
	defer frameRegistryMu.Unlock()
	_, old := frameRegistry[class]
	if old {
		panic(errors.Errorf("trying to register two frames with same class %s", class))
	}
	frameRegistry[class] = creator
}

// RegisteredFrames returns the frame classes that have a creator.
func RegisteredFrames() []FrameClass {
	frameRegistryMu.RLock()
	defer frameRegistryMu.RUnlock()
	classes := make([]FrameClass, 0, len(frameRegistry))
	for class := range frameRegistry {
		classes = append(classes, class)
	}
	return classes
}

// New creates the frame implementation registered for class and initializes it with frameType.
func New(
	class FrameClass,
	frameType FrameType,
	logger logging.Logger,
	driver Driver,
	opts ...Option,
) (Motors, error) {
	frameRegistryMu.RLock()
	creator, ok := frameRegistry[class]
	frameRegistryMu.RUnlock()
	if !ok {
		return nil, NewUnsupportedFrameError(class, frameType)
	}
	m := creator(logger, driver, opts...)
	if err := m.Init(class, frameType); err != nil {
		return nil, err
	}
	return m, nil
}
