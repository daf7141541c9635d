package auth

import "github.com/baechuer/real-time-ressys/services/account-service/internal/domain"

func domainCode(err error) string {
	if err == nil {
		return ""
	}
	if de, ok := domain.As(err); ok {
		return de.Code
	}
	return "non_domain_error"
}

// auditor returns a recorder bound to action with base fields.
// The result and error_code fields are filled per call.
func (s *Service) auditor(action string, base map[string]string) func(result string, err error) {
	return func(result string, err error) {
		fields := make(map[string]string, len(base)+2)
		for k, v := range base {
			fields[k] = v
		}
		fields["result"] = result
		if err != nil {
			fields["error_code"] = domainCode(err)
		}
		s.audit(action, fields)
	}
}
