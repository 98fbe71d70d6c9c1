package wire

// FactoryDefaults returns the full factory configuration document for a
// SWAN unit, as shipped by the vendor. Key order matches the device's
// own config dump.
func FactoryDefaults(imei string) *Config {
	c := NewConfig()
	c.SetString("imei", imei)
	c.SetString("device_tag", "")
	c.SetString("nb1_plmn", "")
	c.SetString("nb1_bands", "3,8,20")
	c.SetString("nb1_apn", "")
	c.SetInt("nb1_psm", 0)
	c.SetInt("nb1_psm_activetime", 0)
	c.SetInt("nb1_psm_tau", 0)
	c.SetInt("nb1_rai", 3)
	c.SetInt("nb1_apn_account_index", 0)
	c.SetString("ntp_server", "0.europe.pool.ntp.org")
	c.SetInt("ntp_port", 123)
	c.SetInt("ntp_auto_sync", 0)
	c.SetInt("timezone", 4)
	c.SetInt("daylightsaving_enable", 1)
	c.SetString("upload_server", "weptech-iot.de/swan2")
	c.SetInt("upload_remote_port", 31031)
	c.SetInt("upload_local_port", 28028)
	c.SetInt("upload_proto", 3)
	c.SetInt("upload_method", 1)
	c.SetInt("upload_account_index", 0)
	c.SetInt("upload_format", 2)
	c.SetInt("upload_format_spec_1", 0xFFFFFFFF)
	c.SetInt("upload_format_spec_2", 0xFFFFFFFF)
	c.SetInt("upload_format_spec_3", 0xFFFFFFFF)
	c.SetInt("upload_retries", 2)
	c.SetInt("upload_months", 4095)
	c.SetInt("upload_days", 16385)
	c.SetInt("upload_weeks", 0)
	c.SetInt("upload_week_days", 0)
	c.SetInt("upload_start_hour", 0)
	c.SetInt("upload_start_minute", 0)
	c.SetInt("upload_hours", 0)
	c.SetInt("upload_per_hour", 1)
	c.SetInt("upload_jitter", 0)
	c.SetInt("lwm2m_idle_time", 120)
	c.SetInt("lwm2m_notify_with_ack", 1)
	c.SetInt("lwm2m_notify_retry_cnt", 2)
	c.SetInt("lwm2m_notify_timeout", 7)
	c.SetInt("lwm2m_lifetime", 150)
	c.SetInt("collect_mode", 8)
	c.SetInt("collect_rssi_min", -108)
	c.SetInt("collect_rssi_max", 127)
	c.SetInt("collect_use_dll", 0)
	c.SetInt("collect_max_num_meters", 5)
	c.SetInt("collect_duration", 300)
	c.SetInt("collect_flags", 0)
	c.SetInt("collect_datalog_flags", 3)
	c.SetInt("collect_months", 4095)
	c.SetInt("collect_days", 16385)
	c.SetInt("collect_weeks", 0)
	c.SetInt("collect_week_days", 0)
	c.SetInt("collect_start_hour", 0)
	c.SetInt("collect_start_minute", 0)
	c.SetInt("collect_hours", 0)
	c.SetInt("collect_per_hour", 1)
	c.SetInt("collect_jitter", 0)
	c.SetInt("upload_after_collect", 0)
	c.SetInt("collect_mode_2", 0)
	c.SetInt("collect_rssi_min_2", -108)
	c.SetInt("collect_rssi_max_2", 127)
	c.SetInt("collect_use_dll_2", 0)
	c.SetInt("collect_max_num_meters_2", 5)
	c.SetInt("collect_duration_2", 300)
	c.SetInt("collect_flags_2", 0)
	c.SetInt("collect_datalog_flags_2", 3)
	c.SetInt("collect_months_2", 0)
	c.SetInt("collect_days_2", 0)
	c.SetInt("collect_weeks_2", 0)
	c.SetInt("collect_week_days_2", 0)
	c.SetInt("collect_start_hour_2", 0)
	c.SetInt("collect_start_minute_2", 0)
	c.SetInt("collect_hours_2", 0)
	c.SetInt("collect_per_hour_2", 1)
	c.SetInt("collect_jitter_2", 0)
	c.SetInt("upload_after_collect_2", 0)
	c.SetInt("quietmode", 0)
	c.SetInt("nfc_fast_install", 1)
	c.SetInt("uart_sci", 0)
	c.SetInt("ci_field_blacklist", 0)
	c.SetInt("autostart", 0)
	c.SetInt("clear_status_after_ul", 1)
	c.SetString("prefilter_devicetype", "")
	c.SetString("prefilter_manufacturer", "")
	c.SetInt("sync_rx", 1)
	c.SetInt("sync_rx_duration", 2000)
	c.SetInt("sync_rx_interval", 300)
	c.SetInt("sync_rx_storage", 3600)
	c.SetInt("sync_rx_max_time_gap", 3600)
	c.SetString("sync_rx_meter", "12345678-WEP-02-02")
	c.SetInt("upload_alarm_mask", 0)
	c.SetInt("upload_alarm_interval", 80)
	return c
}
