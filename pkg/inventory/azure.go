package inventory

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v6"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
)

// AzureLister is the production CloudLister backed by the Azure SDK
// resource-manager clients.
type AzureLister struct {
	cred       azcore.TokenCredential
	subsClient *armsubscriptions.Client
}

// NewAzureLister creates a lister for the tenant the credential belongs to.
func NewAzureLister(cred azcore.TokenCredential) (*AzureLister, error) {
	subsClient, err := armsubscriptions.NewClient(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscriptions client: %w", err)
	}
	return &AzureLister{cred: cred, subsClient: subsClient}, nil
}

// Subscriptions returns a pager over all subscriptions visible to the credential.
func (l *AzureLister) Subscriptions() SubscriptionPager {
	return &azureSubscriptionPager{pager: l.subsClient.NewListPager(nil)}
}

// VirtualMachines returns a pager over all VMs in the given subscription.
func (l *AzureLister) VirtualMachines(subscriptionID string) (VMPager, error) {
	vmClient, err := armcompute.NewVirtualMachinesClient(subscriptionID, l.cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create virtual machines client for %s: %w", subscriptionID, err)
	}
	return &azureVMPager{pager: vmClient.NewListAllPager(nil)}, nil
}

type azureSubscriptionPager struct {
	pager *runtime.Pager[armsubscriptions.ClientListResponse]
}

func (p *azureSubscriptionPager) More() bool {
	return p.pager.More()
}

func (p *azureSubscriptionPager) NextPage(ctx context.Context) ([]*armsubscriptions.Subscription, error) {
	resp, err := p.pager.NextPage(ctx)
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

type azureVMPager struct {
	pager *runtime.Pager[armcompute.VirtualMachinesClientListAllResponse]
}

func (p *azureVMPager) More() bool {
	return p.pager.More()
}

func (p *azureVMPager) NextPage(ctx context.Context) ([]*armcompute.VirtualMachine, error) {
	resp, err := p.pager.NextPage(ctx)
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}
