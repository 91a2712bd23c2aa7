package plants

// derivative returns dx/dt for the state x under the constant input u
type derivative func(x []float64, u float64) []float64

// rk4Step advances x by dt using the classic fourth order Runge-Kutta method.
func rk4Step(f derivative, x []float64, u float64, dt float64) []float64 {
	n := len(x)
	scratch := make([]float64, n)

	k1 := f(x, u)

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*0.5*k1[i]
	}
	k2 := f(scratch, u)

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*0.5*k2[i]
	}
	k3 := f(scratch, u)

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*k3[i]
	}
	k4 := f(scratch, u)

	result := make([]float64, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}

	return result
}
