package enums

type MembershipPlan string

const (
	MembershipPlanPremium     MembershipPlan = "premium"
	MembershipPlanClubPremium MembershipPlan = "club_premium"
)
