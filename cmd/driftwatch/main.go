// Driftwatch is a compliance and remediation engine for network devices.
//
// It evaluates DCL (Device Compliance Language) rules against device
// documents, reporting compliance failures and applying remediation
// templates where rules call for them.
//
// Usage:
//
//	# Validate policy files
//	driftwatch validate --dir policies/
//
//	# Evaluate policies against a device document
//	driftwatch evaluate --dir policies/ --node-data device.json
//
//	# Run the evaluation daemon against the inventory
//	driftwatch watch --config /etc/driftwatch/config.yaml
//
//	# Show version information
//	driftwatch version
package main

func main() {
	Execute()
}
