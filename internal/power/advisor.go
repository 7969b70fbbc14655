package power

import (
	"strings"

	"go.uber.org/zap"
)

// Advisory 厂商省电策略提示
// 部分厂商的系统会终止后台进程导致闹钟失效，需要引导用户放行
type Advisory struct {
	Vendor      string `json:"vendor"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	SettingsRef string `json:"settings_ref"`
}

// vendorAdvisories 已知的激进省电厂商及其设置入口
var vendorAdvisories = map[string]Advisory{
	"xiaomi": {
		Vendor:      "xiaomi",
		Title:       "Enable Autostart",
		Message:     "Allow the app to start automatically so alarms survive deep sleep.",
		SettingsRef: "com.miui.securitycenter/com.miui.permcenter.autostart.AutoStartManagementActivity",
	},
	"oppo": {
		Vendor:      "oppo",
		Title:       "Enable Startup Manager",
		Message:     "Allow the app in Startup Manager so alarms are not killed.",
		SettingsRef: "com.coloros.safecenter/com.coloros.safecenter.permission.startup.StartupAppListActivity",
	},
	"vivo": {
		Vendor:      "vivo",
		Title:       "Enable Background Startup",
		Message:     "Allow high background power usage so alarms can fire.",
		SettingsRef: "com.vivo.permissionmanager/com.vivo.permissionmanager.activity.BgStartUpManagerActivity",
	},
	"letv": {
		Vendor:      "letv",
		Title:       "Enable Autostart",
		Message:     "Allow the app to start automatically in the background.",
		SettingsRef: "com.letv.android.letvsafe/com.letv.android.letvsafe.AutobootManageActivity",
	},
	"honor": {
		Vendor:      "honor",
		Title:       "Enable App Launch",
		Message:     "Set the app to manual launch management and allow all options.",
		SettingsRef: "com.huawei.systemmanager/com.huawei.systemmanager.optimize.process.ProtectActivity",
	},
	"huawei": {
		Vendor:      "huawei",
		Title:       "Enable App Launch",
		Message:     "Set the app to manual launch management and allow all options.",
		SettingsRef: "com.huawei.systemmanager/com.huawei.systemmanager.startupmgr.ui.StartupNormalAppListActivity",
	},
	"asus": {
		Vendor:      "asus",
		Title:       "Enable Autostart",
		Message:     "Allow the app in the Auto-start Manager.",
		SettingsRef: "com.asus.mobilemanager/com.asus.mobilemanager.powersaver.PowerSaverSettings",
	},
	"nokia": {
		Vendor:      "nokia",
		Title:       "Disable Power Saver Restriction",
		Message:     "Remove the app from battery-restricted apps.",
		SettingsRef: "com.evenwell.powersaving.g3/com.evenwell.powersaving.g3.exception.PowerSaverExceptionActivity",
	},
	"samsung": {
		Vendor:      "samsung",
		Title:       "Disable Battery Optimization",
		Message:     "Exempt the app from sleeping apps so alarms fire on time.",
		SettingsRef: "com.samsung.android.lool/com.samsung.android.sm.ui.battery.BatteryActivity",
	},
	"oneplus": {
		Vendor:      "oneplus",
		Title:       "Enable Autostart",
		Message:     "Allow the app to auto-launch in the background.",
		SettingsRef: "com.oneplus.security/com.oneplus.security.chainlaunch.view.ChainLaunchAppListActivity",
	},
}

// redmi 与小米共用同一套设置入口
func init() {
	redmi := vendorAdvisories["xiaomi"]
	redmi.Vendor = "redmi"
	vendorAdvisories["redmi"] = redmi
}

// GenericAdvisory 未知厂商的通用提示
var GenericAdvisory = Advisory{
	Vendor:      "generic",
	Title:       "Disable Battery Optimization",
	Message:     "Exempt the app from battery optimization so alarms fire reliably.",
	SettingsRef: "android.settings.IGNORE_BATTERY_OPTIMIZATION_SETTINGS",
}

// Advisor 根据设备厂商给出省电放行建议
type Advisor struct {
	logger *zap.Logger
}

// NewAdvisor 创建省电建议器
func NewAdvisor(logger *zap.Logger) *Advisor {
	return &Advisor{logger: logger}
}

// Lookup 按厂商名查找建议，大小写不敏感
// 未知厂商返回通用建议
func (a *Advisor) Lookup(manufacturer string) Advisory {
	key := strings.ToLower(strings.TrimSpace(manufacturer))
	if advisory, ok := vendorAdvisories[key]; ok {
		a.logger.Debug("Vendor advisory matched",
			zap.String("manufacturer", key),
		)
		return advisory
	}
	return GenericAdvisory
}

// IsAdvisoryNeeded 判断厂商是否需要专门的放行引导
func (a *Advisor) IsAdvisoryNeeded(manufacturer string) bool {
	key := strings.ToLower(strings.TrimSpace(manufacturer))
	_, ok := vendorAdvisories[key]
	return ok
}
