package admin

import (
	"time"

	"github.com/samber/lo"

	"github.com/shubhamsharma16/SparekartAdmin/pager"
)

const (
	UsersCollection              = "Users"
	ProductsCollection           = "ECommerce/Products/Products"
	PurchaseOrdersCollection     = "ECommerce/PurchaseOrders/PurchaseOrders"
	ComplaintsCollection         = "Complaints/ComplaintRequests/ComplaintRequests"
	ShopkeeperRequestsCollection = "ShopkeeperRequests"
)

type Location struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func projectLocation(doc pager.Document) Location {
	return Location{
		Address:   doc.String("address"),
		Latitude:  doc.Float("latitude"),
		Longitude: doc.Float("longitude"),
	}
}

type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Mail          string    `json:"mail"`
	MobileNo      string    `json:"mobileNo"`
	App1UserType  string    `json:"app1UserType"`
	App2UserType  string    `json:"app2UserType"`
	MechanicType  string    `json:"mechanicType"`
	GarageName    string    `json:"garageName"`
	GarageType    string    `json:"garageType"`
	Address       string    `json:"address"`
	DocumentURL   string    `json:"documentUrl"`
	GaragePicURL  string    `json:"garagePicUrl"`
	ProfilePicURL string    `json:"profilePicUrl"`
	CreatedAt     time.Time `json:"createdAt"`
	ModifiedAt    time.Time `json:"modifiedAt"`
}

func ProjectUser(doc pager.Document) User {
	return User{
		ID:            doc.ID,
		Name:          doc.String("name"),
		Mail:          doc.String("mail"),
		MobileNo:      doc.String("mobileNo"),
		App1UserType:  doc.String("app1UserType"),
		App2UserType:  doc.String("app2UserType"),
		MechanicType:  doc.String("mechanicType"),
		GarageName:    doc.String("garageName"),
		GarageType:    doc.String("garageType"),
		Address:       doc.String("location.address"),
		DocumentURL:   doc.String("documentUrl"),
		GaragePicURL:  doc.String("garagePicUrl"),
		ProfilePicURL: doc.String("profilePicUrl"),
		CreatedAt:     doc.Time("createdAt"),
		ModifiedAt:    doc.Time("modifiedAt"),
	}
}

type Product struct {
	ProductID        string    `json:"productId"`
	ProductBrandName string    `json:"productBrandName"`
	Description      string    `json:"description"`
	Model            string    `json:"model"`
	ModelYear        int64     `json:"modelYear"`
	Category         string    `json:"category"`
	Subcategory      string    `json:"subcategory"`
	VehicleMaker     string    `json:"vehicleMaker"`
	OwnerID          string    `json:"ownerId"`
	Price            float64   `json:"price"`
	ProductImages    []string  `json:"productImages"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ProjectProduct falls back to the document id when productId is missing.
func ProjectProduct(doc pager.Document) Product {
	return Product{
		ProductID:        lo.CoalesceOrEmpty(doc.String("productId"), doc.ID),
		ProductBrandName: doc.String("productBrandName"),
		Description:      doc.String("description"),
		Model:            doc.String("model"),
		ModelYear:        doc.Int("modelYear"),
		Category:         doc.String("category"),
		Subcategory:      doc.String("subcategory"),
		VehicleMaker:     doc.String("vehicleMaker"),
		OwnerID:          doc.String("ownerId"),
		Price:            doc.Float("price"),
		ProductImages:    doc.Strings("productImages"),
		CreatedAt:        doc.Time("createdAt"),
	}
}

// Order is one row of the purchase order list.
type Order struct {
	OrderID          string    `json:"orderId"`
	OrderPlacedAt    time.Time `json:"orderPlacedAt"`
	CustomerName     string    `json:"customerName"`
	CustomerMobileNo string    `json:"customerMobileNo"`
	IsDelivered      bool      `json:"isDelivered"`
}

func ProjectOrder(doc pager.Document) Order {
	return Order{
		OrderID:          lo.CoalesceOrEmpty(doc.String("orderId"), doc.ID),
		OrderPlacedAt:    doc.Time("orderPlacedAt"),
		CustomerName:     doc.String("shippingAddress.fullName"),
		CustomerMobileNo: doc.String("shippingAddress.mobileNumber"),
		IsDelivered:      doc.Has("orderDeliveredAt"),
	}
}

type ShippingAddress struct {
	FullName                string `json:"fullName"`
	MobileNumber            string `json:"mobileNumber"`
	FlatHouseBuilding       string `json:"flatHouseBuilding"`
	AreaStreetSectorVillage string `json:"areaStreetSectorVillage"`
	Landmark                string `json:"landmark"`
	TownCity                string `json:"townCity"`
	State                   string `json:"state"`
	Pincode                 string `json:"pincode"`
}

type BillingDetails struct {
	Subtotal      float64 `json:"subtotal"`
	Discount      float64 `json:"discount"`
	ShippingCost  float64 `json:"shippingCost"`
	Tax           float64 `json:"tax"`
	TotalAmount   float64 `json:"totalAmount"`
	PaymentMethod string  `json:"paymentMethod"`
	TransactionID string  `json:"transactionId"`
}

type OrderLine struct {
	ProductBrandName string   `json:"productBrandName"`
	Model            string   `json:"model"`
	ModelYear        int64    `json:"modelYear"`
	Category         string   `json:"category"`
	Subcategory      string   `json:"subcategory"`
	VehicleMaker     string   `json:"vehicleMaker"`
	Description      string   `json:"description"`
	Price            float64  `json:"price"`
	Quantity         int64    `json:"quantity"`
	ProductImages    []string `json:"productImages"`
}

type OrderDetail struct {
	ID               string          `json:"id"`
	OrderID          string          `json:"orderId"`
	OrderPlacedAt    time.Time       `json:"orderPlacedAt"`
	OrderDeliveredAt *time.Time      `json:"orderDeliveredAt,omitempty"`
	ShippingAddress  ShippingAddress `json:"shippingAddress"`
	BillingDetails   BillingDetails  `json:"billingDetails"`
	Products         []OrderLine     `json:"products"`
}

func ProjectOrderDetail(doc pager.Document) OrderDetail {
	shipping := doc.Map("shippingAddress")
	billing := doc.Map("billingDetails")

	detail := OrderDetail{
		ID:            doc.ID,
		OrderID:       lo.CoalesceOrEmpty(doc.String("orderId"), doc.ID),
		OrderPlacedAt: doc.Time("orderPlacedAt"),
		ShippingAddress: ShippingAddress{
			FullName:                shipping.String("fullName"),
			MobileNumber:            shipping.String("mobileNumber"),
			FlatHouseBuilding:       shipping.String("flatHouseBuilding"),
			AreaStreetSectorVillage: shipping.String("areaStreetSectorVillage"),
			Landmark:                shipping.String("landmark"),
			TownCity:                shipping.String("townCity"),
			State:                   shipping.String("state"),
			Pincode:                 shipping.String("pincode"),
		},
		BillingDetails: BillingDetails{
			Subtotal:      billing.Float("subtotal"),
			Discount:      billing.Float("discount"),
			ShippingCost:  billing.Float("shippingCost"),
			Tax:           billing.Float("tax"),
			TotalAmount:   billing.Float("totalAmount"),
			PaymentMethod: billing.String("paymentMethod"),
			TransactionID: billing.String("transactionId"),
		},
		Products: lo.Map(doc.List("products"), func(line pager.Document, _ int) OrderLine {
			return OrderLine{
				ProductBrandName: line.String("productBrandName"),
				Model:            line.String("model"),
				ModelYear:        line.Int("modelYear"),
				Category:         line.String("category"),
				Subcategory:      line.String("subcategory"),
				VehicleMaker:     line.String("vehicleMaker"),
				Description:      line.String("description"),
				Price:            line.Float("price"),
				Quantity:         line.Int("quantity"),
				ProductImages:    line.Strings("productImages"),
			}
		}),
	}

	if doc.Has("orderDeliveredAt") {
		delivered := doc.Time("orderDeliveredAt")
		detail.OrderDeliveredAt = &delivered
	}

	return detail
}

type Complaint struct {
	ComplaintID    string    `json:"complaintId"`
	CreatedAt      time.Time `json:"createdAt"`
	DriverName     string    `json:"driverName"`
	DriverMobileNo string    `json:"driverMobileNo"`
	IsCompleted    bool      `json:"isCompleted"`
}

func ProjectComplaint(doc pager.Document) Complaint {
	return Complaint{
		ComplaintID:    lo.CoalesceOrEmpty(doc.String("complaintId"), doc.ID),
		CreatedAt:      doc.Time("createdAt"),
		DriverName:     doc.String("driverName"),
		DriverMobileNo: doc.String("driverMobileNo"),
		IsCompleted:    doc.Bool("isCompleted"),
	}
}

type Mechanic struct {
	Name          string   `json:"name"`
	MobileNo      string   `json:"mobileNo"`
	MechanicType  string   `json:"mechanicType"`
	GarageName    string   `json:"garageName"`
	ProfilePicURL string   `json:"profilePicUrl"`
	GaragePicURL  string   `json:"garagePicUrl"`
	DocumentURL   string   `json:"documentUrl"`
	Location      Location `json:"location"`
}

type Shopkeeper struct {
	Name          string   `json:"name"`
	Mail          string   `json:"mail"`
	GstNo         string   `json:"gstNo"`
	ShopName      string   `json:"shopName"`
	ShopPicURL    string   `json:"shopPicUrl"`
	ProfilePicURL string   `json:"profilePicUrl"`
	DocumentURL   string   `json:"documentUrl"`
	Location      Location `json:"location"`
}

type ShopkeeperRequest struct {
	ComplaintID string     `json:"complaintId"`
	CreatedAt   time.Time  `json:"createdAt"`
	Invoice     string     `json:"invoice"`
	InvoiceURL  string     `json:"invoiceUrl"`
	IsCompleted bool       `json:"isCompleted"`
	Mechanic    Mechanic   `json:"mechanic"`
	Shopkeeper  Shopkeeper `json:"shopkeeper"`
}

func ProjectShopkeeperRequest(doc pager.Document) ShopkeeperRequest {
	mechanic := doc.Map("mechanic")
	shopkeeper := doc.Map("shopkeeper")

	return ShopkeeperRequest{
		ComplaintID: doc.String("complaintId"),
		CreatedAt:   doc.Time("createdAt"),
		Invoice:     doc.String("invoice"),
		InvoiceURL:  doc.String("invoiceUrl"),
		IsCompleted: doc.Bool("isCompleted"),
		Mechanic: Mechanic{
			Name:          mechanic.String("name"),
			MobileNo:      mechanic.String("mobileNo"),
			MechanicType:  mechanic.String("mechanicType"),
			GarageName:    mechanic.String("garageName"),
			ProfilePicURL: mechanic.String("profilePicUrl"),
			GaragePicURL:  mechanic.String("garagePicUrl"),
			DocumentURL:   mechanic.String("documentUrl"),
			Location:      projectLocation(mechanic.Map("location")),
		},
		Shopkeeper: Shopkeeper{
			Name:          shopkeeper.String("name"),
			Mail:          shopkeeper.String("mail"),
			GstNo:         shopkeeper.String("gstNo"),
			ShopName:      shopkeeper.String("shopName"),
			ShopPicURL:    shopkeeper.String("shopPicUrl"),
			ProfilePicURL: shopkeeper.String("profilePicUrl"),
			DocumentURL:   shopkeeper.String("documentUrl"),
			Location:      projectLocation(shopkeeper.Map("location")),
		},
	}
}
