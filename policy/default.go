package policy

// Default returns the stock facility policy: admins get the full console,
// guards the gate surfaces, end users their own sessions and invoices. Every
// role can reach the access-denied screen, since the coordinator may send any
// of them there.
func Default() (*Policy, error) {
	p := New()

	if err := p.RegisterRole("admin", []string{
		"/dashboard",
		"/cards",
		"/devices",
		"/parking-sessions",
		"/invoices",
		"/firmware",
		"/staff",
		"/access-denied",
	}, "/dashboard"); err != nil {
		return nil, err
	}

	if err := p.RegisterRole("guard", []string{
		"/gate",
		"/parking-sessions",
		"/access-denied",
	}, "/gate"); err != nil {
		return nil, err
	}

	if err := p.RegisterRole("user", []string{
		"/user-sessions",
		"/my-invoices",
		"/profile",
		"/access-denied",
	}, "/user-sessions"); err != nil {
		return nil, err
	}

	p.Freeze()
	return p, nil
}
