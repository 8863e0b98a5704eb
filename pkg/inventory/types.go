package inventory

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v6"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"

	"github.com/cloudops/azure-vm-eol/pkg/eol"
)

// Record is one virtual machine's inventory entry. It is immutable once
// produced by the enumerator; ownership passes through the channel to the
// consumer.
type Record struct {
	ResourceID     string
	SubscriptionID string
	Publisher      string
	Offer          string
	SKU            string
	Version        string
	ExactVersion   string
	OSType         string
	Family         eol.OSFamily
}

// SubscriptionPager yields pages of subscriptions. It is the subset of the
// Azure SDK pager we need, kept as an interface for lightweight mocking in
// unit tests.
type SubscriptionPager interface {
	More() bool
	NextPage(ctx context.Context) ([]*armsubscriptions.Subscription, error)
}

// VMPager yields pages of virtual machines within one subscription.
type VMPager interface {
	More() bool
	NextPage(ctx context.Context) ([]*armcompute.VirtualMachine, error)
}

// CloudLister provides the paginated listing capabilities the enumerator
// traverses: subscriptions across the tenant, and VMs per subscription.
type CloudLister interface {
	Subscriptions() SubscriptionPager
	VirtualMachines(subscriptionID string) (VMPager, error)
}
