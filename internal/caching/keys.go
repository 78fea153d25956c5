package caching

import "fmt"

func OrgPrefix(orgID string) string {
	return fmt.Sprintf("org:%s:", orgID)
}

// OrgOrdersPrefix covers both active-order and today's-bills keys of one organization
func OrgOrdersPrefix(orgID string) string {
	return fmt.Sprintf("org:%s:orders:", orgID)
}

func ActiveOrdersKey(orgID, policy string) string {
	return fmt.Sprintf("org:%s:orders:active:%s", orgID, policy)
}

// ActiveOrdersTodayKey is the today_only variant, dated like TodayBillsKey
func ActiveOrdersTodayKey(orgID, businessDate string) string {
	return fmt.Sprintf("org:%s:orders:active:today_only:%s", orgID, businessDate)
}

// TodayBillsKey includes the business date so entries roll over at local midnight
func TodayBillsKey(orgID, businessDate string) string {
	return fmt.Sprintf("org:%s:orders:today_bills:%s", orgID, businessDate)
}

func TablesKey(orgID string) string {
	return fmt.Sprintf("org:%s:tables", orgID)
}

func MenuKey(orgID, category string) string {
	if category == "" {
		category = "all"
	}
	return fmt.Sprintf("org:%s:menu:%s", orgID, category)
}

func OrgMenuPrefix(orgID string) string {
	return fmt.Sprintf("org:%s:menu:", orgID)
}

const SuperAdminPrefix = "super_admin:"

func SuperAdminUsersKey(skip, limit int, search, status string) string {
	return fmt.Sprintf("super_admin:users:%d:%d:%s:%s", skip, limit, search, status)
}

func SuperAdminDashboardKey(businessDate string) string {
	return fmt.Sprintf("super_admin:dashboard:%s", businessDate)
}
