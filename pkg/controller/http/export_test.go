package http

import "github.com/secmon-lab/suistat/pkg/usecase"

// Test-only accessor methods for UseCases
func (u *UseCases) Dashboard() usecase.DashboardUseCase {
	return u.dashboard
}

func (u *UseCases) Options() usecase.OptionsUseCase {
	return u.options
}

func (u *UseCases) Status() usecase.StatusProvider {
	return u.status
}

var StatusOf = statusOf
