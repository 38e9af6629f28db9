package config

type SecurityLevel int

const (
	SecurityPublic  SecurityLevel = iota // No authentication
	SecurityRefresh                      // Refresh token required
	SecurityAccess                       // Access token required
	SecurityHR                           // Access token with the hr role required
)

// Route names registered on the HTTP router.
const (
	RouteHealth              = "health"
	RouteLogin               = "auth.login"
	RouteRefresh             = "auth.refresh"
	RouteValidateToken       = "auth.validate-token"
	RouteRegister            = "auth.register"
	RouteMe                  = "me.get"
	RouteUpdateProfile       = "me.update-profile"
	RouteMyOnboarding        = "onboarding.get"
	RouteSubmitOnboarding    = "onboarding.submit"
	RouteMyDocuments         = "documents.list"
	RouteCanUpload           = "documents.can-upload"
	RouteRequestUpload       = "documents.request-upload"
	RouteCompleteUpload      = "documents.complete-upload"
	RouteDownloadURL         = "documents.download-url"
	RouteDeleteDocument      = "documents.delete"
	RouteNotifications       = "notifications.list"
	RouteMarkNotification    = "notifications.mark-read"
	RouteHRApplications      = "hr.applications.list"
	RouteHRApplication       = "hr.applications.get"
	RouteHRReviewApplication = "hr.applications.review"
	RouteHRReviewDocument    = "hr.documents.review"
	RouteHRVisaOverview      = "hr.visa-overview"
	RouteHREmployees         = "hr.employees.list"
	RouteHREmployeeDocuments = "hr.employees.documents"
	RouteHREmployeeOnboard   = "hr.employees.onboarding"
	RouteHRNotifyNextStep    = "hr.employees.notify"
	RouteHRCreateInvitation  = "hr.invitations.create"
	RouteHRInvitations       = "hr.invitations.list"
	RouteStorageUpload       = "storage.upload"
	RouteStorageDownload     = "storage.download"
)

// EndpointSecurityConfig maps route names to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	RouteHealth:        SecurityPublic,
	RouteLogin:         SecurityPublic,
	RouteValidateToken: SecurityPublic,
	RouteRegister:      SecurityPublic,
	// Upload tokens are single use and bound to one key.
	RouteStorageUpload: SecurityPublic,

	RouteRefresh: SecurityRefresh,

	RouteMe:               SecurityAccess,
	RouteUpdateProfile:    SecurityAccess,
	RouteMyOnboarding:     SecurityAccess,
	RouteSubmitOnboarding: SecurityAccess,
	RouteMyDocuments:      SecurityAccess,
	RouteCanUpload:        SecurityAccess,
	RouteRequestUpload:    SecurityAccess,
	RouteCompleteUpload:   SecurityAccess,
	RouteDownloadURL:      SecurityAccess,
	RouteDeleteDocument:   SecurityAccess,
	RouteNotifications:    SecurityAccess,
	RouteMarkNotification: SecurityAccess,
	RouteStorageDownload:  SecurityAccess,

	RouteHRApplications:      SecurityHR,
	RouteHRApplication:       SecurityHR,
	RouteHRReviewApplication: SecurityHR,
	RouteHRReviewDocument:    SecurityHR,
	RouteHRVisaOverview:      SecurityHR,
	RouteHREmployees:         SecurityHR,
	RouteHREmployeeDocuments: SecurityHR,
	RouteHREmployeeOnboard:   SecurityHR,
	RouteHRNotifyNextStep:    SecurityHR,
	RouteHRCreateInvitation:  SecurityHR,
	RouteHRInvitations:       SecurityHR,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityHR
}
