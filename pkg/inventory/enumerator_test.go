package inventory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v6"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
	"github.com/sirupsen/logrus"

	"github.com/cloudops/azure-vm-eol/pkg/eol"
)

func ptr[T any](v T) *T { return &v }

type subPage struct {
	subs []*armsubscriptions.Subscription
	err  error
}

type fakeSubscriptionPager struct {
	pages []subPage
	idx   int
}

func (p *fakeSubscriptionPager) More() bool {
	return p.idx < len(p.pages)
}

func (p *fakeSubscriptionPager) NextPage(ctx context.Context) ([]*armsubscriptions.Subscription, error) {
	page := p.pages[p.idx]
	p.idx++
	return page.subs, page.err
}

type vmPage struct {
	vms []*armcompute.VirtualMachine
	err error
}

type fakeVMPager struct {
	pages []vmPage
	idx   int
}

func (p *fakeVMPager) More() bool {
	return p.idx < len(p.pages)
}

func (p *fakeVMPager) NextPage(ctx context.Context) ([]*armcompute.VirtualMachine, error) {
	page := p.pages[p.idx]
	p.idx++
	return page.vms, page.err
}

type fakeLister struct {
	subPages   []subPage
	vmPages    map[string][]vmPage
	listerErrs map[string]error
}

func (l *fakeLister) Subscriptions() SubscriptionPager {
	return &fakeSubscriptionPager{pages: l.subPages}
}

func (l *fakeLister) VirtualMachines(subscriptionID string) (VMPager, error) {
	if err := l.listerErrs[subscriptionID]; err != nil {
		return nil, err
	}
	return &fakeVMPager{pages: l.vmPages[subscriptionID]}, nil
}

func subscription(id string) *armsubscriptions.Subscription {
	return &armsubscriptions.Subscription{SubscriptionID: ptr(id)}
}

func linuxVM(id, publisher, offer, sku string) *armcompute.VirtualMachine {
	osType := armcompute.OperatingSystemTypesLinux
	return &armcompute.VirtualMachine{
		ID: ptr(id),
		Properties: &armcompute.VirtualMachineProperties{
			StorageProfile: &armcompute.StorageProfile{
				ImageReference: &armcompute.ImageReference{
					Publisher:    ptr(publisher),
					Offer:        ptr(offer),
					SKU:          ptr(sku),
					Version:      ptr("latest"),
					ExactVersion: ptr("1.0.20260101"),
				},
				OSDisk: &armcompute.OSDisk{OSType: &osType},
			},
		},
	}
}

func collect(t *testing.T, records <-chan Record) []Record {
	t.Helper()
	var out []Record
	for record := range records {
		out = append(out, record)
	}
	return out
}

func newEnumeratorLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestEnumerator_DeliversAllRecordsExactlyOnce(t *testing.T) {
	const numSubs, vmsPerSub = 3, 20

	lister := &fakeLister{vmPages: map[string][]vmPage{}}
	var subs []*armsubscriptions.Subscription
	for s := 0; s < numSubs; s++ {
		subID := fmt.Sprintf("sub-%d", s)
		subs = append(subs, subscription(subID))
		// two pages per subscription
		var pageA, pageB []*armcompute.VirtualMachine
		for v := 0; v < vmsPerSub; v++ {
			vm := linuxVM(fmt.Sprintf("/subscriptions/%s/vm-%d", subID, v), "Canonical", "UbuntuServer", "18.04-LTS")
			if v < vmsPerSub/2 {
				pageA = append(pageA, vm)
			} else {
				pageB = append(pageB, vm)
			}
		}
		lister.vmPages[subID] = []vmPage{{vms: pageA}, {vms: pageB}}
	}
	lister.subPages = []subPage{{subs: subs}}

	// Channel capacity well below the total record count: the producer must
	// block rather than drop.
	enum := NewEnumerator(lister, newEnumeratorLogger(), 10, 4)
	records := collect(t, enum.Run(context.Background()))

	if len(records) != numSubs*vmsPerSub {
		t.Fatalf("expected %d records, got %d", numSubs*vmsPerSub, len(records))
	}
	seen := make(map[string]bool, len(records))
	for _, record := range records {
		if seen[record.ResourceID] {
			t.Errorf("duplicate record for %s", record.ResourceID)
		}
		seen[record.ResourceID] = true
		if record.Family != eol.FamilyUbuntu {
			t.Errorf("expected Ubuntu family for %s, got %v", record.ResourceID, record.Family)
		}
	}
}

func TestEnumerator_SkipsVMsMissingNestedFields(t *testing.T) {
	osType := armcompute.OperatingSystemTypesLinux
	noProperties := &armcompute.VirtualMachine{ID: ptr("/vm/no-props")}
	noStorageProfile := &armcompute.VirtualMachine{
		ID:         ptr("/vm/no-storage"),
		Properties: &armcompute.VirtualMachineProperties{},
	}
	noOSDisk := &armcompute.VirtualMachine{
		ID: ptr("/vm/no-osdisk"),
		Properties: &armcompute.VirtualMachineProperties{
			StorageProfile: &armcompute.StorageProfile{
				ImageReference: &armcompute.ImageReference{Offer: ptr("UbuntuServer")},
			},
		},
	}
	healthy := &armcompute.VirtualMachine{
		ID: ptr("/vm/healthy"),
		Properties: &armcompute.VirtualMachineProperties{
			StorageProfile: &armcompute.StorageProfile{
				OSDisk: &armcompute.OSDisk{OSType: &osType},
			},
		},
	}

	lister := &fakeLister{
		subPages: []subPage{{subs: []*armsubscriptions.Subscription{subscription("sub-1")}}},
		vmPages: map[string][]vmPage{
			"sub-1": {{vms: []*armcompute.VirtualMachine{noProperties, noStorageProfile, noOSDisk, healthy}}},
		},
	}

	enum := NewEnumerator(lister, newEnumeratorLogger(), 0, 0)
	records := collect(t, enum.Run(context.Background()))

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].ResourceID != "/vm/healthy" {
		t.Errorf("unexpected record: %+v", records[0])
	}
}

func TestEnumerator_MissingImageReferenceStillEmitted(t *testing.T) {
	osType := armcompute.OperatingSystemTypesWindows
	vm := &armcompute.VirtualMachine{
		ID: ptr("/vm/custom-image"),
		Properties: &armcompute.VirtualMachineProperties{
			StorageProfile: &armcompute.StorageProfile{
				OSDisk: &armcompute.OSDisk{OSType: &osType},
			},
		},
	}

	lister := &fakeLister{
		subPages: []subPage{{subs: []*armsubscriptions.Subscription{subscription("sub-1")}}},
		vmPages:  map[string][]vmPage{"sub-1": {{vms: []*armcompute.VirtualMachine{vm}}}},
	}

	enum := NewEnumerator(lister, newEnumeratorLogger(), 0, 0)
	records := collect(t, enum.Run(context.Background()))

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	record := records[0]
	if record.Publisher != "" || record.Offer != "" || record.SKU != "" || record.Version != "" || record.ExactVersion != "" {
		t.Errorf("expected blank image fields, got %+v", record)
	}
	if record.Family != eol.FamilyUnknown {
		t.Errorf("expected Unknown family, got %v", record.Family)
	}
	if record.OSType != "Windows" {
		t.Errorf("expected OS type from the OS disk, got %q", record.OSType)
	}
}

func TestEnumerator_PageFailureSkipsUnit(t *testing.T) {
	lister := &fakeLister{
		subPages: []subPage{{subs: []*armsubscriptions.Subscription{subscription("sub-bad"), subscription("sub-good")}}},
		vmPages: map[string][]vmPage{
			"sub-bad": {
				{vms: []*armcompute.VirtualMachine{linuxVM("/vm/bad-1", "OpenLogic", "CentOS", "7.6")}},
				{err: errors.New("throttled")},
				{vms: []*armcompute.VirtualMachine{linuxVM("/vm/bad-unreachable", "OpenLogic", "CentOS", "7.6")}},
			},
			"sub-good": {{vms: []*armcompute.VirtualMachine{linuxVM("/vm/good-1", "RedHat", "RHEL", "7-LVM")}}},
		},
	}

	enum := NewEnumerator(lister, newEnumeratorLogger(), 1, 1)
	records := collect(t, enum.Run(context.Background()))

	ids := make(map[string]bool)
	for _, record := range records {
		ids[record.ResourceID] = true
	}
	if !ids["/vm/bad-1"] {
		t.Error("expected the page before the failure to be delivered")
	}
	if !ids["/vm/good-1"] {
		t.Error("expected other subscriptions to continue after a page failure")
	}
	if ids["/vm/bad-unreachable"] {
		t.Error("pages after a pager failure should not be delivered")
	}
}

func TestEnumerator_ListerFailureSkipsSubscription(t *testing.T) {
	lister := &fakeLister{
		subPages:   []subPage{{subs: []*armsubscriptions.Subscription{subscription("sub-denied"), subscription("sub-ok")}}},
		listerErrs: map[string]error{"sub-denied": errors.New("authorization failed")},
		vmPages: map[string][]vmPage{
			"sub-ok": {{vms: []*armcompute.VirtualMachine{linuxVM("/vm/ok", "Canonical", "UbuntuServer", "20_04-lts-gen2")}}},
		},
	}

	enum := NewEnumerator(lister, newEnumeratorLogger(), 2, 2)
	records := collect(t, enum.Run(context.Background()))

	if len(records) != 1 || records[0].ResourceID != "/vm/ok" {
		t.Errorf("expected only the healthy subscription's VM, got %+v", records)
	}
}

func TestEnumerator_SubscriptionPageFailureStopsCleanly(t *testing.T) {
	lister := &fakeLister{
		subPages: []subPage{
			{subs: []*armsubscriptions.Subscription{subscription("sub-1")}},
			{err: errors.New("expired token")},
		},
		vmPages: map[string][]vmPage{
			"sub-1": {{vms: []*armcompute.VirtualMachine{linuxVM("/vm/one", "Canonical", "UbuntuServer", "18.04-LTS")}}},
		},
	}

	enum := NewEnumerator(lister, newEnumeratorLogger(), 2, 2)
	records := collect(t, enum.Run(context.Background()))

	if len(records) != 1 {
		t.Errorf("expected records before the failing page, got %d", len(records))
	}
}

func TestEnumerator_ContextCancelClosesChannel(t *testing.T) {
	var vms []*armcompute.VirtualMachine
	for i := 0; i < 100; i++ {
		vms = append(vms, linuxVM(fmt.Sprintf("/vm/%d", i), "Canonical", "UbuntuServer", "18.04-LTS"))
	}
	lister := &fakeLister{
		subPages: []subPage{{subs: []*armsubscriptions.Subscription{subscription("sub-1")}}},
		vmPages:  map[string][]vmPage{"sub-1": {{vms: vms}}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	enum := NewEnumerator(lister, newEnumeratorLogger(), 1, 1)
	records := enum.Run(ctx)

	// Take one record, then cancel; the channel must close without the
	// producer blocking forever on the full channel.
	<-records
	cancel()
	for range records {
	}
}
