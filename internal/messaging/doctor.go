package messaging

import "github.com/fractalmind/teamchat-go/internal/diagnostics"

// DoctorCheck runs the fixed battery of named health checks against team.
func (s *Service) DoctorCheck(team string, sampleSize int) (diagnostics.Report, error) {
	st, err := s.openTeam(team)
	if err != nil {
		return diagnostics.Report{}, err
	}
	return diagnostics.RunDoctorChecks(st, sampleSize)
}
