package store

// Collection names, uniformly prefixed per spec.md §4.10 ("collections
// prefixed uniformly and indexed on knowledge_id and on the entity's
// primary key").
const (
	CollectionContentChunks    = "kw_content_chunks"
	CollectionScreens          = "kw_screens"
	CollectionActions          = "kw_actions"
	CollectionTasks            = "kw_tasks"
	CollectionTransitions      = "kw_transitions"
	CollectionScreenGroups     = "kw_screen_groups"
	CollectionBusinessFunctions = "kw_business_functions"
	CollectionUserFlows        = "kw_user_flows"
	CollectionWorkflows        = "kw_workflows"
)

// AllEntityCollections lists every collection participating in a
// replace-by-id bulk delete when a workflow restarts with an existing
// knowledge_id (§3.4, §4.8 "Replace-by-id").
var AllEntityCollections = []string{
	CollectionScreens,
	CollectionActions,
	CollectionTasks,
	CollectionTransitions,
	CollectionScreenGroups,
	CollectionBusinessFunctions,
	CollectionUserFlows,
	CollectionWorkflows,
}
