package cloudres

import "fmt"

func init() {
	register("azurerm_virtual_machine", func(a Attrs) (string, map[string]interface{}, string) {
		return a.String("vm_size", "Standard_B1s"), nil, "vm"
	})
	alias("azurerm_linux_virtual_machine", "azurerm_virtual_machine")
	alias("azurerm_windows_virtual_machine", "azurerm_virtual_machine")

	register("azurerm_storage_account", func(a Attrs) (string, map[string]interface{}, string) {
		return a.String("account_tier", "Standard"), nil, "storage"
	})

	register("azurerm_mssql_database", func(a Attrs) (string, map[string]interface{}, string) {
		return a.String("sku_name", "S0"), nil, "sqldb"
	})
	alias("azurerm_sql_database", "azurerm_mssql_database")

	register("azurerm_kubernetes_cluster", func(a Attrs) (string, map[string]interface{}, string) {
		return "control-plane", nil, "aks"
	})

	register("azurerm_linux_web_app", func(a Attrs) (string, map[string]interface{}, string) {
		return appServicePlanSKU(a, "B1"), nil, "appservice"
	})
	alias("azurerm_windows_web_app", "azurerm_linux_web_app")
	alias("azurerm_app_service", "azurerm_linux_web_app")

	register("azurerm_linux_function_app", func(a Attrs) (string, map[string]interface{}, string) {
		return "consumption", nil, "function"
	})
	alias("azurerm_windows_function_app", "azurerm_linux_function_app")
	alias("azurerm_function_app", "azurerm_linux_function_app")

	register("azurerm_redis_cache", func(a Attrs) (string, map[string]interface{}, string) {
		return a.String("sku_name", "Basic"), map[string]interface{}{
			"capacity": a.Int("capacity", 0),
		}, "rediscache"
	})

	register("azurerm_cosmosdb_account", func(a Attrs) (string, map[string]interface{}, string) {
		return "standard", nil, "cosmos"
	})

	// Standalone PostgreSQL/MySQL servers and SQL Managed Instance: priced
	// as instance-like resources (hourly x730 x count), not folded into
	// azurerm_mssql_database's PaaS-SKU billing.
	register("azurerm_postgresql_server", postgreSQLHandler)
	alias("azurerm_postgresql_flexible_server", "azurerm_postgresql_server")

	register("azurerm_mysql_server", mySQLHandler)
	alias("azurerm_mysql_flexible_server", "azurerm_mysql_server")

	register("azurerm_sql_managed_instance", func(a Attrs) (string, map[string]interface{}, string) {
		sku := a.String("sku_name", "GP_Gen5")
		meta := map[string]interface{}{
			"vcores":     a.Int("vcores", 4),
			"storage_gb": a.Int("storage_size_in_gb", 32),
		}
		return sku, meta, "sqlmi"
	})

	register("azurerm_container_group", func(a Attrs) (string, map[string]interface{}, string) {
		cpu := containerGroupCPU(a, 1.0)
		memory := containerGroupMemory(a, 1.5)
		meta := map[string]interface{}{
			"cpu":    cpu,
			"memory": memory,
		}
		return fmt.Sprintf("%gcpu-%ggb", cpu, memory), meta, "aci"
	})

	register("azurerm_application_gateway", func(a Attrs) (string, map[string]interface{}, string) {
		sku, capacity := gatewaySKU(a)
		return sku, map[string]interface{}{"capacity": capacity}, "appgw"
	})

	register("azurerm_eventhub_namespace", func(a Attrs) (string, map[string]interface{}, string) {
		return a.String("sku", "Standard"), map[string]interface{}{
			"capacity": a.Int("capacity", 1),
		}, "eventhub"
	})

	register("azurerm_data_factory", func(a Attrs) (string, map[string]interface{}, string) {
		return "datafactory", nil, "adf"
	})

	register("azurerm_virtual_network_gateway", func(a Attrs) (string, map[string]interface{}, string) {
		gwType := a.String("type", "Vpn")
		sku := a.String("sku", "Basic")
		return gwType + "_" + sku, nil, "vpngw"
	})

	register("azurerm_synapse_workspace", func(a Attrs) (string, map[string]interface{}, string) {
		return "synapse", nil, "synapse"
	})
}

// postgreSQLHandler and mySQLHandler share the same sku/storage shape; kept
// as separate registrations (rather than one aliased pair) since their
// static rate tables live in distinct categories.
func postgreSQLHandler(a Attrs) (string, map[string]interface{}, string) {
	sku := a.String("sku_name", "B_Gen5_2")
	meta := map[string]interface{}{"storage_gb": a.Int("storage_mb", 5120) / 1024}
	return sku, meta, "postgresql"
}

func mySQLHandler(a Attrs) (string, map[string]interface{}, string) {
	sku := a.String("sku_name", "B_Gen5_2")
	meta := map[string]interface{}{"storage_gb": a.Int("storage_mb", 5120) / 1024}
	return sku, meta, "mysql"
}

func containerGroupCPU(a Attrs, def float64) float64 {
	switch v := a["cpu"].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

func containerGroupMemory(a Attrs, def float64) float64 {
	switch v := a["memory"].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// gatewaySKU reads the nested `sku { name = ..., capacity = ... }` block
// application gateways declare; falls back to Standard_v2/2 if absent.
func gatewaySKU(a Attrs) (string, int) {
	if sku, ok := a["sku"].(map[string]interface{}); ok {
		name, _ := sku["name"].(string)
		if name == "" {
			name = "Standard_v2"
		}
		capacity := 2
		switch v := sku["capacity"].(type) {
		case int:
			capacity = v
		case float64:
			capacity = int(v)
		}
		return name, capacity
	}
	return "Standard_v2", 2
}

func appServicePlanSKU(a Attrs, def string) string {
	if plan, ok := a["service_plan_sku_name"].(string); ok && plan != "" {
		return plan
	}
	return a.String("sku_name", def)
}
