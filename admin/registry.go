package admin

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/shubhamsharma16/SparekartAdmin/pager"
)

// Resource names double as route segments.
const (
	UsersResource              = "users"
	ProductsResource           = "products"
	PurchaseOrdersResource     = "purchase-orders"
	ComplaintsResource         = "all-complaints"
	ShopkeeperRequestsResource = "shopkeeper-request"
)

// Settings overrides the defaults of one resource.
type Settings struct {
	PageSize   int
	FilterMode pager.FilterMode
}

type registryOptions struct {
	settings map[string]Settings
	now      func() time.Time
}

type RegistryOption func(*registryOptions)

// WithSettings overrides page size and filter mode of resource name. Zero
// values keep the defaults. The page size is lowered to the maximum of the
// resource.
func WithSettings(name string, s Settings) RegistryOption {
	return func(o *registryOptions) {
		o.settings[name] = s
	}
}

// WithClock sets the clock used to stamp modifications.
func WithClock(now func() time.Time) RegistryOption {
	return func(o *registryOptions) {
		o.now = now
	}
}

// Registry holds the resources by name.
type Registry struct {
	resources map[string]Resource
	order     []string
	validator *Validator
}

// NewRegistry builds the five list resources.
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	o := registryOptions{settings: make(map[string]Settings), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	reg := &Registry{
		resources: make(map[string]Resource),
		validator: NewValidator(),
	}

	for name := range o.settings {
		if _, err := reg.lookupName(name, Names()); err != nil {
			return nil, err
		}
	}

	env := resourceEnv{validator: reg.validator, now: o.now, settings: o.settings}

	for _, build := range []func(resourceEnv) (Resource, error){
		usersResource,
		productsResource,
		purchaseOrdersResource,
		complaintsResource,
		shopkeeperRequestsResource,
	} {
		res, err := build(env)
		if err != nil {
			return nil, err
		}

		reg.resources[res.Name()] = res
		reg.order = append(reg.order, res.Name())
	}

	return reg, nil
}

// Names lists the resource names in menu order.
func Names() []string {
	return []string{
		UsersResource,
		ProductsResource,
		PurchaseOrdersResource,
		ComplaintsResource,
		ShopkeeperRequestsResource,
	}
}

// Get returns resource name. Unknown names fail with ErrUnknownResource and a
// suggestion.
func (r *Registry) Get(name string) (Resource, error) {
	name, err := r.lookupName(name, r.order)
	if err != nil {
		return nil, err
	}

	return r.resources[name], nil
}

func (r *Registry) lookupName(name string, names []string) (string, error) {
	if lo.Contains(names, name) {
		return name, nil
	}

	if closest := pager.Closest(name, names); closest != "" {
		return "", fmt.Errorf("%w '%s', did you mean '%s'?", ErrUnknownResource, name, closest)
	}

	return "", fmt.Errorf("%w '%s'", ErrUnknownResource, name)
}

// All returns the resources in menu order.
func (r *Registry) All() []Resource {
	return lo.Map(r.order, func(name string, _ int) Resource { return r.resources[name] })
}

type resourceEnv struct {
	validator *Validator
	now       func() time.Time
	settings  map[string]Settings
}

// newResource applies the settings of name to the view, registers the update
// schema and validates the result.
func newResource[T any](env resourceEnv, res *resource[T], properties map[string]any) (Resource, error) {
	if s, ok := env.settings[res.name]; ok {
		if s.PageSize > 0 {
			res.view = res.view.WithPageSize(s.PageSize)
		}
		if s.FilterMode != "" {
			res.view = res.view.WithFilterMode(s.FilterMode)
		}
	}

	if err := res.view.Validate(); err != nil {
		return nil, fmt.Errorf("resource %s: %w", res.name, err)
	}

	res.validator = env.validator
	res.now = env.now
	res.editable = lo.Keys(properties)
	slices.Sort(res.editable)
	if len(properties) > 0 {
		env.validator.Register(res.name, updateSchema(properties))
	}

	return res, nil
}

func yesNo(b bool) string {
	return lo.Ternary(b, "Yes", "No")
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format("02 Jan 2006, 15:04")
}

func usersResource(env resourceEnv) (Resource, error) {
	view := pager.NewView(UsersCollection, ProjectUser).
		WithSearch(
			pager.SearchField[User]{Path: "name", Value: func(u User) string { return u.Name }},
			pager.SearchField[User]{Path: "mail", Value: func(u User) string { return u.Mail }},
		)

	return newResource(env, &resource[User]{
		name:  UsersResource,
		title: "Users",
		view:  view,
		columns: []Column[User]{
			{Header: "Name", Value: func(u User) string { return u.Name }},
			{Header: "Mail", Value: func(u User) string { return u.Mail }},
			{Header: "Mobile", Value: func(u User) string { return u.MobileNo }},
			{Header: "Type", Value: func(u User) string { return strings.TrimSpace(u.App1UserType + " " + u.App2UserType) }},
			{Header: "Garage", Value: func(u User) string { return u.GarageName }},
			{Header: "Address", Value: func(u User) string { return u.Address }},
		},
		stamp: func(fields map[string]any, now time.Time) {
			fields["modifiedAt"] = now.UTC()
		},
	}, map[string]any{
		"name":             _text,
		"mail":             map[string]any{"type": "string", "format": "email"},
		"mobileNo":         _text,
		"app1UserType":     _text,
		"app2UserType":     _text,
		"mechanicType":     _text,
		"garageName":       _text,
		"garageType":       _text,
		"location.address": _text,
		"profilePicUrl":    _url,
		"garagePicUrl":     _url,
	})
}

func productsResource(env resourceEnv) (Resource, error) {
	view := pager.NewView(ProductsCollection, ProjectProduct).
		WithSearch(
			pager.SearchField[Product]{Path: "productBrandName", Value: func(p Product) string { return p.ProductBrandName }},
			pager.SearchField[Product]{Path: "model", Value: func(p Product) string { return p.Model }},
		)

	return newResource(env, &resource[Product]{
		name:  ProductsResource,
		title: "Products",
		view:  view,
		columns: []Column[Product]{
			{Header: "Brand", Value: func(p Product) string { return p.ProductBrandName }},
			{Header: "Model", Value: func(p Product) string { return p.Model }},
			{Header: "Year", Value: func(p Product) string { return strconv.FormatInt(p.ModelYear, 10) }},
			{Header: "Category", Value: func(p Product) string { return p.Category }},
			{Header: "Maker", Value: func(p Product) string { return p.VehicleMaker }},
			{Header: "Price", Value: func(p Product) string { return strconv.FormatFloat(p.Price, 'f', 2, 64) }},
		},
	}, map[string]any{
		"category":         _text,
		"description":      _text,
		"model":            _text,
		"modelYear":        _integer,
		"ownerId":          _text,
		"price":            _number,
		"productBrandName": _text,
		"subcategory":      _text,
		"vehicleMaker":     _text,
		"productImages":    _texts,
	})
}

func purchaseOrdersResource(env resourceEnv) (Resource, error) {
	view := pager.NewView(PurchaseOrdersCollection, ProjectOrder).
		WithOrderField("orderPlacedAt").
		WithSearch(
			pager.SearchField[Order]{Path: "shippingAddress.fullName", Value: func(o Order) string { return o.CustomerName }},
			pager.SearchField[Order]{Path: "shippingAddress.mobileNumber", Value: func(o Order) string { return o.CustomerMobileNo }},
		)

	return newResource(env, &resource[Order]{
		name:  PurchaseOrdersResource,
		title: "Purchase Orders",
		view:  view,
		columns: []Column[Order]{
			{Header: "Order", Value: func(o Order) string { return o.OrderID }},
			{Header: "Placed", Value: func(o Order) string { return date(o.OrderPlacedAt) }},
			{Header: "Customer", Value: func(o Order) string { return o.CustomerName }},
			{Header: "Mobile", Value: func(o Order) string { return o.CustomerMobileNo }},
			{Header: "Delivered", Value: func(o Order) string { return yesNo(o.IsDelivered) }},
		},
	}, nil)
}

func complaintsResource(env resourceEnv) (Resource, error) {
	view := pager.NewView(ComplaintsCollection, ProjectComplaint).
		WithSearch(
			pager.SearchField[Complaint]{Path: "driverName", Value: func(c Complaint) string { return c.DriverName }},
			pager.SearchField[Complaint]{Path: "driverMobileNo", Value: func(c Complaint) string { return c.DriverMobileNo }},
		)

	return newResource(env, &resource[Complaint]{
		name:  ComplaintsResource,
		title: "Complaints",
		view:  view,
		columns: []Column[Complaint]{
			{Header: "Complaint", Value: func(c Complaint) string { return c.ComplaintID }},
			{Header: "Created", Value: func(c Complaint) string { return date(c.CreatedAt) }},
			{Header: "Driver", Value: func(c Complaint) string { return c.DriverName }},
			{Header: "Mobile", Value: func(c Complaint) string { return c.DriverMobileNo }},
			{Header: "Status", Value: func(c Complaint) string { return lo.Ternary(c.IsCompleted, "Completed", "Pending") }},
		},
	}, map[string]any{
		"isCompleted": _boolean,
	})
}

func shopkeeperRequestsResource(env resourceEnv) (Resource, error) {
	view := pager.NewView(ShopkeeperRequestsCollection, ProjectShopkeeperRequest).
		WithMaxPageSize(50).
		WithPageSize(15).
		WithSearch(
			pager.SearchField[ShopkeeperRequest]{Path: "complaintId", Value: func(r ShopkeeperRequest) string { return r.ComplaintID }},
			pager.SearchField[ShopkeeperRequest]{Path: "mechanic.name", Value: func(r ShopkeeperRequest) string { return r.Mechanic.Name }},
			pager.SearchField[ShopkeeperRequest]{Path: "shopkeeper.name", Value: func(r ShopkeeperRequest) string { return r.Shopkeeper.Name }},
		)

	return newResource(env, &resource[ShopkeeperRequest]{
		name:      ShopkeeperRequestsResource,
		title:     "Shopkeeper Requests",
		view:      view,
		deletable: true,
		columns: []Column[ShopkeeperRequest]{
			{Header: "Complaint", Value: func(r ShopkeeperRequest) string { return r.ComplaintID }},
			{Header: "Created", Value: func(r ShopkeeperRequest) string { return date(r.CreatedAt) }},
			{Header: "Mechanic", Value: func(r ShopkeeperRequest) string { return r.Mechanic.Name }},
			{Header: "Shopkeeper", Value: func(r ShopkeeperRequest) string { return r.Shopkeeper.Name }},
			{Header: "Invoice", Value: func(r ShopkeeperRequest) string { return r.Invoice }},
			{Header: "Status", Value: func(r ShopkeeperRequest) string { return lo.Ternary(r.IsCompleted, "Completed", "Pending") }},
		},
	}, nil)
}
