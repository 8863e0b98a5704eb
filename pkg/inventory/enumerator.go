package inventory

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v6"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/cloudops/azure-vm-eol/pkg/eol"
)

const (
	defaultPageConcurrency = 10
	defaultChannelCapacity = 32
)

// Enumerator traverses every subscription and every VM within it, emitting
// one Record per VM on a bounded channel. Page processing is fanned out
// with a concurrency cap; the channel capacity applies backpressure when
// the consumer is slower than enumeration.
type Enumerator struct {
	lister          CloudLister
	logger          *logrus.Logger
	pageConcurrency int
	channelCapacity int
}

// NewEnumerator creates an enumerator. Non-positive concurrency or capacity
// values fall back to the defaults (10 concurrent pages, 32 buffered records).
func NewEnumerator(lister CloudLister, logger *logrus.Logger, pageConcurrency, channelCapacity int) *Enumerator {
	if pageConcurrency <= 0 {
		pageConcurrency = defaultPageConcurrency
	}
	if channelCapacity <= 0 {
		channelCapacity = defaultChannelCapacity
	}
	return &Enumerator{
		lister:          lister,
		logger:          logger,
		pageConcurrency: pageConcurrency,
		channelCapacity: channelCapacity,
	}
}

// Run starts enumeration in the background and returns the record channel.
// The channel is closed once every subscription and VM has been traversed
// or the context is cancelled. Failures listing a page or one
// subscription's VMs are logged and skipped; they never abort the run.
func (e *Enumerator) Run(ctx context.Context) <-chan Record {
	out := make(chan Record, e.channelCapacity)
	go func() {
		defer close(out)
		e.enumerate(ctx, out)
	}()
	return out
}

func (e *Enumerator) enumerate(ctx context.Context, out chan<- Record) {
	group := &errgroup.Group{}
	group.SetLimit(e.pageConcurrency)

	pager := e.lister.Subscriptions()
	for pager.More() {
		if ctx.Err() != nil {
			break
		}
		subs, err := pager.NextPage(ctx)
		if err != nil {
			e.logger.Errorf("Failed to list subscriptions page: %v", err)
			break
		}
		group.Go(func() error {
			for _, sub := range subs {
				if sub == nil {
					continue
				}
				subscriptionID := deref(sub.SubscriptionID)
				e.logger.Debugf("Listing VMs for subscription %s", subscriptionID)
				e.collectVMs(ctx, subscriptionID, out)
			}
			return nil
		})
	}
	_ = group.Wait()
}

// collectVMs walks all VM pages of a single subscription. Errors are
// confined to the subscription: a failed client build or page read skips
// the remainder of that subscription only.
func (e *Enumerator) collectVMs(ctx context.Context, subscriptionID string, out chan<- Record) {
	pager, err := e.lister.VirtualMachines(subscriptionID)
	if err != nil {
		e.logger.Errorf("Failed to list VMs for subscription %s: %v", subscriptionID, err)
		return
	}

	group := &errgroup.Group{}
	group.SetLimit(e.pageConcurrency)

	for pager.More() {
		if ctx.Err() != nil {
			break
		}
		vms, err := pager.NextPage(ctx)
		if err != nil {
			e.logger.Errorf("Failed to list VMs page for subscription %s: %v", subscriptionID, err)
			break
		}
		group.Go(func() error {
			for _, vm := range vms {
				record, ok := e.recordFromVM(vm, subscriptionID)
				if !ok {
					continue
				}
				select {
				case out <- record:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}
	_ = group.Wait()
}

// recordFromVM extracts the classification-relevant fields from a VM
// resource. A VM missing its properties, storage profile or OS disk is
// skipped with a diagnostic; a missing image reference alone still yields
// a record with blank image fields, since the OS type may still be known.
func (e *Enumerator) recordFromVM(vm *armcompute.VirtualMachine, subscriptionID string) (Record, bool) {
	if vm == nil {
		return Record{}, false
	}
	resourceID := deref(vm.ID)

	if vm.Properties == nil {
		e.logger.Errorf("No properties found for: %s", resourceID)
		return Record{}, false
	}
	storageProfile := vm.Properties.StorageProfile
	if storageProfile == nil {
		e.logger.Errorf("No storage profile found for: %s", resourceID)
		return Record{}, false
	}
	osDisk := storageProfile.OSDisk
	if osDisk == nil {
		e.logger.Errorf("No OS disk found for: %s", resourceID)
		return Record{}, false
	}

	record := Record{
		ResourceID:     resourceID,
		SubscriptionID: subscriptionID,
	}
	if ref := storageProfile.ImageReference; ref != nil {
		record.Publisher = deref(ref.Publisher)
		record.Offer = deref(ref.Offer)
		record.SKU = deref(ref.SKU)
		record.Version = deref(ref.Version)
		record.ExactVersion = deref(ref.ExactVersion)
	}
	if osDisk.OSType != nil {
		record.OSType = string(*osDisk.OSType)
	}
	record.Family = eol.DetectFamily(record.Publisher, record.Offer)
	return record, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
