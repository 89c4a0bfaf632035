package hycu

// Metadata is the paging block attached to every listing.
type Metadata struct {
	GrandTotalEntityCount int `json:"grandTotalEntityCount"`
	TotalEntityCount      int `json:"totalEntityCount"`
	PageSize              int `json:"pageSize"`
	PageNumber            int `json:"pageNumber"`
}

// Page is the standard listing envelope returned by the REST API.
type Page[T any] struct {
	Entities []T      `json:"entities"`
	Metadata Metadata `json:"metadata"`
}

// Truncated reports whether the server holds more entities than were
// returned in this page.
func (p Page[T]) Truncated() bool {
	return p.Metadata.GrandTotalEntityCount > len(p.Entities)
}

// First returns the first entity, if any.
func (p Page[T]) First() (T, bool) {
	var zero T
	if len(p.Entities) == 0 {
		return zero, false
	}
	return p.Entities[0], true
}

// Entity is an untyped listing row, used where only a few named fields
// are read (name resolution).
type Entity map[string]any

// String returns the string value of key, or "" when missing or not a string.
func (e Entity) String(key string) string {
	if s, ok := e[key].(string); ok {
		return s
	}
	return ""
}

// VM is a virtual machine as listed by /vms.
type VM struct {
	UUID                string `json:"uuid"`
	VMName              string `json:"vmName"`
	ProtectionGroupName string `json:"protectionGroupName"`
	Status              string `json:"status"`
	CompliancyStatus    string `json:"compliancyStatus"`
}

// Backup is one restore point of a VM, newest first.
type Backup struct {
	UUID                   string `json:"uuid"`
	VMName                 string `json:"vmName"`
	Status                 string `json:"status"`
	Type                   string `json:"type"`
	NumberOfArchives       int    `json:"numberOfArchives"`
	NumberOfFailedArchives int    `json:"numberOfFailedArchives"`
}

// Target is a backup target. The detail endpoint returns it either as a
// bare object or wrapped in a one-element listing.
type Target struct {
	UUID   string `json:"uuid"`
	Name   string `json:"name"`
	Health string `json:"health"`
	Type   string `json:"type"`
}

type targetEnvelope struct {
	Target
	Entities []Target `json:"entities"`
}

func (env targetEnvelope) normalize() Target {
	if len(env.Entities) > 0 {
		return env.Entities[0]
	}
	return env.Target
}

// Policy is a backup policy with its compliance counters.
type Policy struct {
	UUID             string `json:"uuid"`
	Name             string `json:"name"`
	CompliancyStatus string `json:"compliancyStatus"`

	VMsCount            int `json:"vmsCount"`
	CompliantVMsCount   int `json:"compliantVmsCount"`
	UncompliantVMsCount int `json:"uncompliantVmsCount"`

	SharesCount            int `json:"sharesCount"`
	CompliantSharesCount   int `json:"compliantSharesCount"`
	UncompliantSharesCount int `json:"uncompliantSharesCount"`

	AppsCount            int `json:"appsCount"`
	CompliantAppsCount   int `json:"compliantAppsCount"`
	UncompliantAppsCount int `json:"uncompliantAppsCount"`

	BucketsCount            int `json:"bucketsCount"`
	CompliantBucketsCount   int `json:"compliantBucketsCount"`
	UncompliantBucketsCount int `json:"uncompliantBucketsCount"`

	VGsCount            int `json:"vgsCount"`
	CompliantVGsCount   int `json:"compliantVgsCount"`
	UncompliantVGsCount int `json:"uncompliantVgsCount"`
}

// VMDashboard is the manager-wide VM protection summary.
type VMDashboard struct {
	TotalCount           int `json:"totalCount"`
	ProtectedCount       int `json:"protectedCount"`
	UnprotectedCount     int `json:"unprotectedCount"`
	CompliancyGreenCount int `json:"compliancyGreenCount"`
	CompliancyRedCount   int `json:"compliancyRedCount"`
	CompliancyGreyCount  int `json:"compliancyGreyCount"`
}

// Job is one entry of the job history.
type Job struct {
	UUID      string `json:"uuid"`
	TaskName  string `json:"taskName"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime"`
}

// License describes the installed license.
type License struct {
	CompanyName     string `json:"companyName"`
	Type            string `json:"type"`
	Status          string `json:"status"`
	VersionType     string `json:"versionType"`
	DaysLeft        int    `json:"daysLeft"`
	ExpirationDate  int64  `json:"expirationDate"`
	LicensedVMs     int    `json:"licensedVms"`
	ProtectedVMs    int    `json:"protectedVms"`
	LicensedSockets int    `json:"licensedSockets"`
	ActualSockets   int    `json:"actualSockets"`
}

// Controller describes the HYCU controller VM.
type Controller struct {
	ControllerVMName       string `json:"controllerVmName"`
	SoftwareVersion        string `json:"softwareVersion"`
	BuildVersion           string `json:"buildVersion"`
	ExternalHypervisorType string `json:"externalHypervisorType"`
}

// Share is a file share or object bucket; both come from /shares and are
// told apart by ProtocolTypeList.
type Share struct {
	UUID                string   `json:"uuid"`
	ShareName           string   `json:"shareName"`
	ProtocolTypeList    []string `json:"protocolTypeList"`
	Status              string   `json:"status"`
	CompliancyStatus    string   `json:"compliancyStatus"`
	ProtectionGroupName string   `json:"protectionGroupName"`
}

// HasProtocol reports whether the share advertises any of the protocols.
func (s Share) HasProtocol(protocols ...string) bool {
	for _, have := range s.ProtocolTypeList {
		for _, want := range protocols {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Application is a protected application instance.
type Application struct {
	UUID                string `json:"uuid"`
	Name                string `json:"name"`
	ProtectionGroupName string `json:"protectionGroupName"`
}

// VolumeGroup is a volume group.
type VolumeGroup struct {
	UUID                string `json:"uuid"`
	Name                string `json:"name"`
	ProtectionGroupName string `json:"protectionGroupName"`
}
