package constants_test

import (
	"context"
	"fmt"

	"github.com/agentstation/tftmeta/pkg/constants"
)

// Example_timeouts demonstrates bounding a provider call
func Example_timeouts() {
	ctx, cancel := context.WithTimeout(context.Background(), constants.ProviderCallTimeout)
	defer cancel()

	_, hasDeadline := ctx.Deadline()
	fmt.Println("provider call bounded:", hasDeadline)
	fmt.Println("snapshot ttl:", constants.DefaultCacheTTL)
	// Output:
	// provider call bounded: true
	// snapshot ttl: 12h0m0s
}

// Example_defaults shows the values used when configuration is silent
func Example_defaults() {
	fmt.Println(constants.DefaultFallbackVersion)
	fmt.Println(constants.DefaultLocale)
	// Output:
	// 15.12.1
	// en_US
}

// Example_callBudget shows that the default retries fit the call bound
func Example_callBudget() {
	budget := constants.CallBudget(constants.DefaultHTTPTimeout, constants.DefaultRetries)
	fmt.Println("budget:", budget)
	fmt.Println("fits:", budget <= constants.ProviderCallTimeout)
	// Output:
	// budget: 19s
	// fits: true
}
