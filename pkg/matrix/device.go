package matrix

// DeviceMatrix is the surface a device stamps into. Indices are 1-based,
// index 0 is ground and never carries an equation.
type DeviceMatrix interface {
	AddElement(i, j int, value float64)
	AddRHS(i int, value float64)
	GetSize() int
}
