package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysUser{},
	// Catalog
	&Category{},
	&Product{},
	// Pantry
	&PantryRecord{},
	&PurchaseOrder{},
}
