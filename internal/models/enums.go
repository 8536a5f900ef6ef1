package models

import (
	"encoding/json"
	"fmt"
	"slices"
)

// RatingType is how an inspector answers a field. It is never unset.
type RatingType string

const (
	RatingTypeCheckbox RatingType = "RATING_TYPE_CHECKBOX"
	RatingTypeRadio    RatingType = "RATING_TYPE_RADIO"
	RatingTypeSelect   RatingType = "RATING_TYPE_SELECT"
)

// RatingTypes lists every legal [RatingType].
var RatingTypes = []RatingType{RatingTypeCheckbox, RatingTypeRadio, RatingTypeSelect}

func (r *RatingType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, r, RatingTypes, "rating type")
}

// DisplayType positions a section in the template hierarchy.
type DisplayType string

const (
	DisplayTypeUnspecified DisplayType = "SECTION_DISPLAY_TYPE_UNSPECIFIED"
	DisplayTypeTab         DisplayType = "SECTION_DISPLAY_TYPE_TAB"
	DisplayTypeAccordion   DisplayType = "SECTION_DISPLAY_TYPE_ACCORDION"
	// DisplayTypeFieldSet is the only display type that may carry fields.
	DisplayTypeFieldSet    DisplayType = "SECTION_DISPLAY_TYPE_FIELD_SET"
)

var DisplayTypes = []DisplayType{DisplayTypeUnspecified, DisplayTypeTab, DisplayTypeAccordion, DisplayTypeFieldSet}

func (d *DisplayType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, d, DisplayTypes, "display type")
}

// MaintenanceCategory is the work order category raised from a field.
type MaintenanceCategory string

const (
	CategoryUnspecified     MaintenanceCategory = "MAINTENANCE_CATEGORY_UNSPECIFIED"
	CategoryPlumbing        MaintenanceCategory = "MAINTENANCE_CATEGORY_PLUMBING"
	CategoryElectrical      MaintenanceCategory = "MAINTENANCE_CATEGORY_ELECTRICAL"
	CategoryHVAC            MaintenanceCategory = "MAINTENANCE_CATEGORY_HVAC"
	CategoryPestControl     MaintenanceCategory = "MAINTENANCE_CATEGORY_PEST_CONTROL"
	CategoryCleaning        MaintenanceCategory = "MAINTENANCE_CATEGORY_CLEANING"
	CategoryCarpentry       MaintenanceCategory = "MAINTENANCE_CATEGORY_CARPENTRY"
	CategoryExterior        MaintenanceCategory = "MAINTENANCE_CATEGORY_EXTERIOR"
	CategoryApplianceRepair MaintenanceCategory = "MAINTENANCE_CATEGORY_APPLIANCE_REPAIR"
	CategorySecurity        MaintenanceCategory = "MAINTENANCE_CATEGORY_SECURITY"
	CategoryPainting        MaintenanceCategory = "MAINTENANCE_CATEGORY_PAINTING"
)

var MaintenanceCategories = []MaintenanceCategory{
	CategoryUnspecified,
	CategoryPlumbing,
	CategoryElectrical,
	CategoryHVAC,
	CategoryPestControl,
	CategoryCleaning,
	CategoryCarpentry,
	CategoryExterior,
	CategoryApplianceRepair,
	CategorySecurity,
	CategoryPainting,
}

func (c *MaintenanceCategory) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, c, MaintenanceCategories, "maintenance category")
}

// WorkOrderSubCategory refines a [MaintenanceCategory].
type WorkOrderSubCategory string

const subPrefix = "WORK_ORDER_SUB_CATEGORY_"

const (
	SubCategoryUnspecified WorkOrderSubCategory = subPrefix + "UNSPECIFIED"

	SubCategoryPlumbingCloggedDrain     WorkOrderSubCategory = subPrefix + "PLUMBING_CLOGGED_DRAIN"
	SubCategoryPlumbingFaucetLeak       WorkOrderSubCategory = subPrefix + "PLUMBING_FAUCET_LEAK"
	SubCategoryPlumbingToiletRepair     WorkOrderSubCategory = subPrefix + "PLUMBING_TOILET_REPAIR_REPLACEMENT"
	SubCategoryPlumbingPipeLeak         WorkOrderSubCategory = subPrefix + "PLUMBING_PIPE_LEAK_BURST"
	SubCategoryPlumbingWaterHeater      WorkOrderSubCategory = subPrefix + "PLUMBING_WATER_HEATER_REPAIR"
	SubCategoryPlumbingSewerBackup      WorkOrderSubCategory = subPrefix + "PLUMBING_SEWER_BACKUP"
	SubCategoryPlumbingLowWaterPressure WorkOrderSubCategory = subPrefix + "PLUMBING_LOW_WATER_PRESSURE"
	SubCategoryPlumbingShowerTub        WorkOrderSubCategory = subPrefix + "PLUMBING_SHOWER_TUB_ISSUES"
	SubCategoryPlumbingGarbageDisposal  WorkOrderSubCategory = subPrefix + "PLUMBING_GARBAGE_DISPOSAL_REPAIR"
	SubCategoryElectricalPowerOutage    WorkOrderSubCategory = subPrefix + "ELECTRICAL_POWER_OUTAGE"
	SubCategoryElectricalLightFixture   WorkOrderSubCategory = subPrefix + "ELECTRICAL_LIGHT_FIXTURE_INSTALLATION_REPAIR"
	SubCategoryElectricalOutletSwitch   WorkOrderSubCategory = subPrefix + "ELECTRICAL_OUTLET_OR_SWITCH_NOT_WORKING"
	SubCategoryElectricalCircuitBreaker WorkOrderSubCategory = subPrefix + "ELECTRICAL_CIRCUIT_BREAKER_TRIPPING"
	SubCategoryElectricalWiring         WorkOrderSubCategory = subPrefix + "ELECTRICAL_WIRING_ISSUES"
	SubCategoryElectricalCeilingFan     WorkOrderSubCategory = subPrefix + "ELECTRICAL_CEILING_FAN_INSTALLATION_REPAIR"
	SubCategoryElectricalSmokeDetector  WorkOrderSubCategory = subPrefix + "ELECTRICAL_SMOKE_DETECTOR_ISSUE"
	SubCategoryHVACNotCooling           WorkOrderSubCategory = subPrefix + "HVAC_AC_NOT_COOLING"
	SubCategoryHVACNotHeating           WorkOrderSubCategory = subPrefix + "HVAC_FURNACE_NOT_HEATING"
	SubCategoryHVACThermostat           WorkOrderSubCategory = subPrefix + "HVAC_THERMOSTAT_MALFUNCTION"
	SubCategoryHVACAirFilter            WorkOrderSubCategory = subPrefix + "HVAC_AIR_FILTER_REPLACEMENT"
	SubCategoryHVACVentCleaning         WorkOrderSubCategory = subPrefix + "HVAC_VENT_CLEANING"
	SubCategoryPestRodent               WorkOrderSubCategory = subPrefix + "PEST_CONTROL_RODENT_INFESTATION"
	SubCategoryPestCockroach            WorkOrderSubCategory = subPrefix + "PEST_CONTROL_COCKROACH_TREATMENT"
	SubCategoryPestPreventative         WorkOrderSubCategory = subPrefix + "PEST_CONTROL_PREVENTATIVE_PEST_CONTROL"
	SubCategoryPestTermite              WorkOrderSubCategory = subPrefix + "PEST_CONTROL_TERMITE_CONTROL"
	SubCategoryPestBeeWasp              WorkOrderSubCategory = subPrefix + "PEST_CONTROL_BEE_WASP_REMOVAL"
	SubCategoryCarpentryDoor            WorkOrderSubCategory = subPrefix + "CARPENTRY_DOOR_REPAIR_INSTALLATION"
	SubCategoryCarpentryWindowFrame     WorkOrderSubCategory = subPrefix + "CARPENTRY_WINDOW_FRAME_REPAIR"
	SubCategoryCarpentryCabinet         WorkOrderSubCategory = subPrefix + "CARPENTRY_CABINET_REPAIR"
	SubCategoryCarpentryDrywall         WorkOrderSubCategory = subPrefix + "CARPENTRY_DRYWALL_REPAIR"
	SubCategoryCarpentryFloorboard      WorkOrderSubCategory = subPrefix + "CARPENTRY_FLOORBOARD_REPAIR"
	SubCategoryApplianceRefrigerator    WorkOrderSubCategory = subPrefix + "APPLIANCE_REPAIR_REFRIGERATOR_FAILURE"
	SubCategoryApplianceStoveOven       WorkOrderSubCategory = subPrefix + "APPLIANCE_REPAIR_STOVE_OVEN_MALFUNCTION"
	SubCategoryApplianceDishwasher      WorkOrderSubCategory = subPrefix + "APPLIANCE_REPAIR_DISHWASHER_FAILURE"
	SubCategorySecurityDoorLock         WorkOrderSubCategory = subPrefix + "SECURITY_DOOR_LOCK_REPAIR"
	SubCategorySecuritySystem           WorkOrderSubCategory = subPrefix + "SECURITY_SECURITY_SYSTEM_INTERCOM_MALFUNCTION"
	SubCategoryPaintingMoldRemediation  WorkOrderSubCategory = subPrefix + "PAINTING_MOLD_REMEDIATION"
)

var WorkOrderSubCategories = []WorkOrderSubCategory{
	SubCategoryUnspecified,
	SubCategoryPlumbingCloggedDrain,
	SubCategoryPlumbingFaucetLeak,
	SubCategoryPlumbingToiletRepair,
	SubCategoryPlumbingPipeLeak,
	SubCategoryPlumbingWaterHeater,
	SubCategoryPlumbingSewerBackup,
	SubCategoryPlumbingLowWaterPressure,
	SubCategoryPlumbingShowerTub,
	SubCategoryPlumbingGarbageDisposal,
	SubCategoryElectricalPowerOutage,
	SubCategoryElectricalLightFixture,
	SubCategoryElectricalOutletSwitch,
	SubCategoryElectricalCircuitBreaker,
	SubCategoryElectricalWiring,
	SubCategoryElectricalCeilingFan,
	SubCategoryElectricalSmokeDetector,
	SubCategoryHVACNotCooling,
	SubCategoryHVACNotHeating,
	SubCategoryHVACThermostat,
	SubCategoryHVACAirFilter,
	SubCategoryHVACVentCleaning,
	SubCategoryPestRodent,
	SubCategoryPestCockroach,
	SubCategoryPestPreventative,
	SubCategoryPestTermite,
	SubCategoryPestBeeWasp,
	SubCategoryCarpentryDoor,
	SubCategoryCarpentryWindowFrame,
	SubCategoryCarpentryCabinet,
	SubCategoryCarpentryDrywall,
	SubCategoryCarpentryFloorboard,
	SubCategoryApplianceRefrigerator,
	SubCategoryApplianceStoveOven,
	SubCategoryApplianceDishwasher,
	SubCategorySecurityDoorLock,
	SubCategorySecuritySystem,
	SubCategoryPaintingMoldRemediation,
}

func (s *WorkOrderSubCategory) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, s, WorkOrderSubCategories, "work order sub category")
}

// EnumValues returns the string form of every value in legal, for schema generation
// and prompt text.
func EnumValues[T ~string](legal []T) []string {
	out := make([]string, len(legal))
	for i, v := range legal {
		out[i] = string(v)
	}
	return out
}

func unmarshalEnum[T ~string](data []byte, dst *T, legal []T, kind string) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%s must be a string: %w", kind, err)
	}
	if !slices.Contains(legal, T(s)) {
		return fmt.Errorf("unknown %s %q", kind, s)
	}
	*dst = T(s)
	return nil
}
