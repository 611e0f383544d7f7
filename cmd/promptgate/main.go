// PromptGate is an admission-control service for LLM API traffic.
//
// It enforces layered rate limits for each client identifier:
//   - Token bucket burst control (per identifier and service-wide)
//   - Sliding window ceilings per minute, hour, and day
//   - Usage inspection and administrative resets over HTTP
//
// Usage:
//
//	# Start server with default configuration
//	promptgate run
//
//	# Start with custom configuration file
//	promptgate run --config /path/to/config.yaml
//
//	# Validate a configuration file
//	promptgate validate --config /path/to/config.yaml
//
//	# Show version information
//	promptgate version
package main

func main() {
	Execute()
}
