// Package kyc stores KYC submissions.
package kyc

import "github.com/layer-3/trustgate/core"

// refusal explains why an existing submission may not be replaced.
func refusal(status core.KYCStatus) error {
	if status == core.KYCApproved {
		return core.ErrKYCAlreadyApproved
	}
	return core.ErrKYCPending
}
