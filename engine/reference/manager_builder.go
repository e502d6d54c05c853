package reference

// ManagerBuilderOption is a functional option for configuring a Manager during construction.
type ManagerBuilderOption func(*Manager)

// WithFactory sets the function that creates an external transform for each instance.
//
// Parameters:
//   - f: the factory, nil keeps DefaultFactory
//
// Returns:
//   - ManagerBuilderOption: a function that applies the factory option
func WithFactory(f Factory) ManagerBuilderOption {
	return func(m *Manager) {
		if f != nil {
			m.factory = f
		}
	}
}

// WithUseReferences enables references as soon as the Manager is created.
//
// Parameters:
//   - use: whether references should exist
//
// Returns:
//   - ManagerBuilderOption: a function that applies the option
func WithUseReferences(use bool) ManagerBuilderOption {
	return func(m *Manager) {
		m.useReferences = use
	}
}
