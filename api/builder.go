package api

// DriverBuilder creates a new instance of Driver.
type DriverBuilder struct {
	repeat int
}

// WithRepeat sets the number of cases generated per codebook.
func (b DriverBuilder) WithRepeat(n int) DriverBuilder {
	b.repeat = n
	return b
}

// Build create a driver.
func (b DriverBuilder) Build(name string) Driver {
	return &driverImpl{
		name:   name,
		repeat: b.repeat,
	}
}
