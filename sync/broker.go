// ABOUTME: Broker assignment inference for imported records
// ABOUTME: Matches CRM owner names against the configured broker list
package sync

import (
	"strings"

	"github.com/harperreed/brokerdesk/models"
)

// UnassignedSuffix marks an owner that matched no configured broker.
const UnassignedSuffix = " / Unassigned"

// matchBroker returns the first configured broker whose name appears in owner.
func matchBroker(owner string, brokers []string) (string, bool) {
	lower := strings.ToLower(owner)
	for _, b := range brokers {
		if b == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(b)) {
			return b, true
		}
	}
	return "", false
}

// InferBroker assigns a contact to a broker from its CRM owner name. An owner
// that matches nobody is flagged as "<first name> / Unassigned" for manual review.
func InferBroker(owner string, brokers []string) string {
	if b, ok := matchBroker(owner, brokers); ok {
		return b
	}
	if first := firstToken(owner); first != "" {
		return first + UnassignedSuffix
	}
	return ""
}

// ActivityBroker picks the lane for a synced activity. Unmatched owners land in
// the first broker's lane, or the staff lane when no brokers are configured.
func ActivityBroker(owner string, brokers []string) string {
	if b, ok := matchBroker(owner, brokers); ok {
		return b
	}
	for _, b := range brokers {
		if b != "" {
			return b
		}
	}
	return models.StaffLane
}
