package classifier

import "github.com/ghfacilities/query-engine/internal/domain"

// exemplars holds 4-7 hand-crafted example queries per intent, used by the
// primary embedding-similarity classification pass. Frozen as a Go literal:
// these are reviewed constants, not runtime-tunable data.
var exemplars = map[domain.Intent][]string{
	domain.IntentCount: {
		"how many hospitals are in Ashanti",
		"count the clinics in Greater Accra",
		"how many facilities offer dialysis",
		"total number of pharmacies in Tamale",
		"how many health centers are there",
	},
	domain.IntentAggregate: {
		"which region has the most hospitals",
		"breakdown of facilities per region",
		"number of facilities by region",
		"how many facilities does each region have",
		"region with the highest facility count",
	},
	domain.IntentAnomalyDetection: {
		"which facilities have an unusual bed to doctor ratio",
		"find facilities with abnormal staffing ratios",
		"show outlier hospitals with too few doctors",
		"detect anomalies in capacity versus doctor counts",
		"which hospitals look suspiciously understaffed",
	},
	domain.IntentValidation: {
		"can this hospital really perform open heart surgery",
		"verify the facility has the equipment it claims",
		"does this clinic have what it needs for cardiac catheterization",
		"check if this facility's claimed procedures are plausible",
		"validate the equipment list of this hospital",
	},
	domain.IntentDistanceQuery: {
		"how far is Kumasi from Accra",
		"distance between Tamale and Bolgatanga",
		"how many kilometers from Cape Coast to Takoradi",
		"travel distance from Ho to Koforidua",
	},
	domain.IntentCoverageGap: {
		"where are the coverage gaps in emergency care",
		"which areas are underserved by hospitals",
		"find regions far from any facility",
		"identify gaps in healthcare coverage",
		"areas with no nearby facility",
	},
	domain.IntentMedicalDesert: {
		"which regions are medical deserts",
		"where is there no access to oncology care",
		"find areas far from any cardiology facility",
		"identify medical deserts for dialysis",
	},
	domain.IntentSinglePointFailure: {
		"which specialties are offered by only one facility",
		"find single points of failure in specialty coverage",
		"what rare specialties have few providers",
		"which services would collapse if one hospital closed",
	},
	domain.IntentFacilityLookup: {
		"tell me about Komfo Anokye Teaching Hospital",
		"show me details for the Tamale clinic",
		"find the facility named Ridge Hospital",
		"look up Korle Bu Teaching Hospital",
	},
	domain.IntentServiceSearch: {
		"hospitals offering MRI scans near Accra",
		"clinics with an ICU in Kumasi",
		"facilities with ultrasound equipment",
		"where can I get a CT scan nearby",
	},
	domain.IntentSpecialtySearch: {
		"hospitals with a cardiology department",
		"find facilities offering oncology",
		"which clinics provide pediatrics",
		"facilities that do neurosurgery",
	},
	domain.IntentComparison: {
		"compare hospitals in Ashanti and Volta",
		"how does Accra compare to Kumasi for facility count",
		"compare coverage between Northern and Savannah regions",
		"which region has better facility density, Central or Western",
	},
	domain.IntentPlanning: {
		"where should we build a new hospital",
		"plan a route for a specialist visiting several clinics",
		"recommend where to deploy new CT scanners",
		"suggest facilities needing more doctors",
		"plan equipment distribution across regions",
	},
	domain.IntentGeneral: {
		"what can you tell me about the healthcare system",
		"give me an overview of facilities in Ghana",
		"what data do you have",
		"help me understand the corpus",
	},
}
