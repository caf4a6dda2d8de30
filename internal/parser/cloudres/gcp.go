package cloudres

func init() {
	register("google_compute_instance", func(a Attrs) (string, map[string]interface{}, string) {
		return machineType(a, "e2-medium"), nil, "gce"
	})

	register("google_sql_database_instance", func(a Attrs) (string, map[string]interface{}, string) {
		tier := sqlTier(a, "db-f1-micro")
		meta := map[string]interface{}{
			"database_version": a.String("database_version", "POSTGRES_15"),
		}
		return tier, meta, "cloudsql"
	})

	register("google_storage_bucket", func(a Attrs) (string, map[string]interface{}, string) {
		return "standard", nil, "gcs"
	})

	register("google_cloudfunctions_function", func(a Attrs) (string, map[string]interface{}, string) {
		meta := map[string]interface{}{
			"available_memory_mb": a.Int("available_memory_mb", 256),
			"runtime":             a.String("runtime", "python312"),
		}
		return a.String("runtime", "python312"), meta, "cloudfn"
	})
	alias("google_cloudfunctions2_function", "google_cloudfunctions_function")

	register("google_cloud_run_service", func(a Attrs) (string, map[string]interface{}, string) {
		return "2vcpu-4gb", nil, "cloudrun"
	})
	alias("google_cloud_run_v2_service", "google_cloud_run_service")

	register("google_container_cluster", func(a Attrs) (string, map[string]interface{}, string) {
		return "control-plane", nil, "gke"
	})

	register("google_spanner_instance", func(a Attrs) (string, map[string]interface{}, string) {
		return a.String("config", "regional-us-central1"), map[string]interface{}{
			"num_nodes": a.Int("num_nodes", 1),
		}, "spanner"
	})

	register("google_redis_instance", func(a Attrs) (string, map[string]interface{}, string) {
		return a.String("tier", "BASIC"), map[string]interface{}{
			"memory_size_gb": a.Int("memory_size_gb", 1),
		}, "memorystore"
	})

	register("google_pubsub_topic", func(a Attrs) (string, map[string]interface{}, string) {
		return "pubsub_topic", nil, "pubsub"
	})

	register("google_bigquery_dataset", func(a Attrs) (string, map[string]interface{}, string) {
		return "dataset", nil, "bigquery"
	})
}

func machineType(a Attrs, def string) string {
	return a.String("machine_type", def)
}

func sqlTier(a Attrs, def string) string {
	if settings, ok := a["settings"].(map[string]interface{}); ok {
		if v, ok := settings["tier"].(string); ok && v != "" {
			return v
		}
	}
	return a.String("tier", def)
}
