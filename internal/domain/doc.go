// Package domain models point weather, hazard feeds and the risk verdict
// derived from them.
//
// # Data Sources
//
// Weather comes from the Open-Meteo forecast API. A snapshot holds the
// current-hour conditions plus a multi-day daily forecast:
//
//	current: temperature_2m (°C), rain (mm, current hour), wind_speed_10m (km/h),
//	         soil_moisture_0_to_1cm (m³/m³, treated as a 0.0–1.0 fraction),
//	         snowfall (cm), relative_humidity_2m (%, display only)
//	daily:   temperature_2m_max (°C), precipitation_sum (mm)
//
// Active fires come from NASA FIRMS (MODIS Collection 6.1, South Asia, 24h).
// Disaster alerts come from the GDACS RSS feed.
//
// # Absent vs. Zero
//
// A snapshot whose Current block is nil means the upstream had no current
// conditions at all; it classifies as NO_DATA. A non-nil Current block with
// missing fields is a measured snapshot whose missing fields read as 0.
//
// # Risk Classification
//
// [Assess] evaluates an ordered rule table; the first rule that matches wins and
// every comparison is a strict greater-than:
//
//	1. no current block           -> NO_DATA           none
//	2. wind > 89 km/h             -> SEVERE_CYCLONE    severe
//	   wind > 62 km/h             -> CYCLONE_WARNING   caution
//	3. max daily precip > 100 mm  -> FLOOD_FORECAST    severe
//	   rain > 50 mm, soil > 0.4   -> FLASH_FLOOD_RISK  severe
//	   rain > 20 mm               -> HEAVY_RAINFALL    caution
//	4. temp > 45 °C               -> EXTREME_HEATWAVE  severe
//	   temp > 40 °C               -> HEAT_ALERT        caution
//	5. snowfall > 5 cm            -> AVALANCHE_RISK    caution
//	6. otherwise                  -> NORMAL            none
//
// An empty daily forecast reads as a single day with 0 mm of precipitation.
//
// The 100 mm forecast and 0.4 soil-moisture thresholds carry no cited
// meteorological source. They are fixed in [DefaultThresholds] and must not be
// tuned without sign-off from the domain owner.
package domain
